package service

import (
	"errors"
)

const (
	BadRequest          = 400
	NotFound            = 404
	InternalServerError = 500
	ServiceUnavailable  = 503
)

var (
	ErrParamInvalid      = errors.New("参数错误")
	ErrMissingFields     = errors.New("缺少必要参数")
	ErrInvalidUserID     = errors.New("用户ID无效")
	ErrInvalidItemType   = errors.New("无效的内容类型")
	ErrInvalidActionType = errors.New("无效的行为类型")
	ErrInvalidLearning   = errors.New("无效的学习类型")
	ErrInvalidCompletion = errors.New("无效的完成状态")
	ErrInvalidStrategy   = errors.New("无效的推荐类型")
	ErrInvalidProgress   = errors.New("进度必须在0到100之间")
	ErrGoalNotFound      = errors.New("学习目标不存在")
	ErrDependency        = errors.New("依赖服务暂不可用，请稍后重试")
	UnExpectedError      = errors.New("系统异常，请稍后重试")
)

var ErrorMap = map[error]int{
	ErrParamInvalid:      BadRequest,
	ErrMissingFields:     BadRequest,
	ErrInvalidUserID:     BadRequest,
	ErrInvalidItemType:   BadRequest,
	ErrInvalidActionType: BadRequest,
	ErrInvalidLearning:   BadRequest,
	ErrInvalidCompletion: BadRequest,
	ErrInvalidStrategy:   BadRequest,
	ErrInvalidProgress:   BadRequest,
	ErrGoalNotFound:      NotFound,
	ErrDependency:        ServiceUnavailable,
	UnExpectedError:      InternalServerError,
}
