package service

import (
	"Lumen/internal/model"
	"Lumen/internal/pkg/mongo"
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

var testNow = time.Date(2026, 10, 15, 10, 30, 0, 0, time.UTC)

type fakeBehaviorRepo struct {
	mu        sync.Mutex
	behaviors []*model.UserBehavior
	createErr error

	similarItems   []*model.ItemInteraction
	similarErr       error
	lastSimilarIDs   []uint64
	lastSimilarLimit int

	actionStats   []*model.ActionStat
	distinctUsers int64
	activeUsers   int64
	topStacks     []*model.TechStackCount
}

func (r *fakeBehaviorRepo) CreateBehavior(_ context.Context, b *model.UserBehavior) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	b.ID = uint64(len(r.behaviors) + 1)
	cp := *b
	r.behaviors = append(r.behaviors, &cp)
	return nil
}

func (r *fakeBehaviorRepo) GetRecentBehaviors(_ context.Context, userID uint64, limit int) ([]*model.UserBehavior, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.UserBehavior, 0)
	for _, b := range r.behaviors {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeBehaviorRepo) CountInteractions(_ context.Context, itemID uint64, itemType string, actions []string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, b := range r.behaviors {
		if b.ItemID == itemID && b.ItemType == itemType && slices.Contains(actions, b.ActionType) {
			n++
		}
	}
	return n, nil
}

func (r *fakeBehaviorRepo) GetSimilarUsersItems(_ context.Context, userIDs []uint64, _ uint64, _ []string, limit int) ([]*model.ItemInteraction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastSimilarIDs = append([]uint64(nil), userIDs...)
	r.lastSimilarLimit = limit
	if r.similarErr != nil {
		return nil, r.similarErr
	}
	out := r.similarItems
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeBehaviorRepo) GetActionStats(context.Context) ([]*model.ActionStat, error) {
	return r.actionStats, nil
}

func (r *fakeBehaviorRepo) CountDistinctUsers(context.Context) (int64, error) {
	return r.distinctUsers, nil
}

func (r *fakeBehaviorRepo) CountActiveUsersSince(context.Context, time.Time) (int64, error) {
	return r.activeUsers, nil
}

func (r *fakeBehaviorRepo) GetTopTechStacks(_ context.Context, _ time.Time, limit int) ([]*model.TechStackCount, error) {
	out := r.topStacks
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeBehaviorRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.behaviors)
}

type fakeFeatureRepo struct {
	mu       sync.Mutex
	features map[model.ItemKey]*model.ContentFeature
	nextID   uint64
	getErr   error
}

func newFakeFeatureRepo(features ...*model.ContentFeature) *fakeFeatureRepo {
	r := &fakeFeatureRepo{features: make(map[model.ItemKey]*model.ContentFeature)}
	for _, f := range features {
		_ = r.UpsertFeature(context.Background(), f)
	}
	return r
}

func (r *fakeFeatureRepo) GetFeature(_ context.Context, itemID uint64, itemType string) (*model.ContentFeature, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	return r.features[model.ItemKey{ItemID: itemID, ItemType: itemType}], nil
}

func (r *fakeFeatureRepo) GetFeatures(_ context.Context, keys []model.ItemKey) (map[model.ItemKey]*model.ContentFeature, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[model.ItemKey]*model.ContentFeature)
	for _, k := range keys {
		if f, ok := r.features[k]; ok {
			out[k] = f
		}
	}
	return out, nil
}

func (r *fakeFeatureRepo) UpsertFeature(_ context.Context, f *model.ContentFeature) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := model.ItemKey{ItemID: f.ItemID, ItemType: f.ItemType}
	cp := *f
	if old, ok := r.features[key]; ok {
		cp.ID = old.ID
	} else {
		r.nextID++
		cp.ID = r.nextID
	}
	f.ID = cp.ID
	r.features[key] = &cp
	return nil
}

func (r *fakeFeatureRepo) DeleteFeature(_ context.Context, itemID uint64, itemType string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.features, model.ItemKey{ItemID: itemID, ItemType: itemType})
	return nil
}

func (r *fakeFeatureRepo) ListFeatures(_ context.Context, afterID uint64, size int) ([]*model.ContentFeature, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.ContentFeature, 0)
	for _, f := range r.features {
		if f.ID > afterID {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if len(out) > size {
		out = out[:size]
	}
	return out, nil
}

func (r *fakeFeatureRepo) CountByItemType(context.Context) ([]*model.ItemTypeCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := map[string]int64{}
	for k := range r.features {
		counts[k.ItemType]++
	}
	out := make([]*model.ItemTypeCount, 0, len(counts))
	for t, c := range counts {
		out = append(out, &model.ItemTypeCount{ItemType: t, Count: c})
	}
	return out, nil
}

func (r *fakeFeatureRepo) UpdateTags(_ context.Context, id uint64, tags model.TagSet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.features {
		if f.ID == id {
			f.Tags = tags
		}
	}
	return nil
}

func (r *fakeFeatureRepo) get(itemID uint64, itemType string) *model.ContentFeature {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.features[model.ItemKey{ItemID: itemID, ItemType: itemType}]
}

type fakeProfileRepo struct {
	mu       sync.Mutex
	profiles map[uint64]*model.InterestProfile
	getErr   error
	listed   int
}

func newFakeProfileRepo(profiles ...*model.InterestProfile) *fakeProfileRepo {
	r := &fakeProfileRepo{profiles: make(map[uint64]*model.InterestProfile)}
	for _, p := range profiles {
		r.profiles[p.UserID] = p
	}
	return r
}

func (r *fakeProfileRepo) GetProfile(_ context.Context, userID uint64) (*model.InterestProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	return r.profiles[userID], nil
}

func (r *fakeProfileRepo) SaveProfile(_ context.Context, p *model.InterestProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.profiles[p.UserID] = &cp
	return nil
}

func (r *fakeProfileRepo) ListProfilesExcept(_ context.Context, userID uint64) ([]*model.InterestProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listed++
	out := make([]*model.InterestProfile, 0, len(r.profiles))
	for id, p := range r.profiles {
		if id != userID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (r *fakeProfileRepo) CountProfiles(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.profiles)), nil
}

type fakeContentRepo struct {
	mu          sync.Mutex
	sources     map[model.ItemKey]*model.ContentSource
	items       []*model.ContentItem
	taggedErr   error
	taggedDelay time.Duration
	popularErr  error
	taggedCalls int
	popularCall []int
}

func (r *fakeContentRepo) GetContentSource(_ context.Context, itemID uint64, itemType string) (*model.ContentSource, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sources[model.ItemKey{ItemID: itemID, ItemType: itemType}], nil
}

func (r *fakeContentRepo) ListContentSources(_ context.Context, itemType string, afterID uint64, size int) ([]*model.ContentSource, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.ContentSource, 0)
	for k, s := range r.sources {
		if k.ItemType == itemType && k.ItemID > afterID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemID < out[j].ItemID })
	if len(out) > size {
		out = out[:size]
	}
	return out, nil
}

func (r *fakeContentRepo) ListTaggedContents(context.Context) ([]*model.ContentItem, error) {
	r.mu.Lock()
	r.taggedCalls++
	delay, err := r.taggedDelay, r.taggedErr
	r.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}
	if err != nil {
		return nil, err
	}
	return r.items, nil
}

func (r *fakeContentRepo) ListPopularContents(_ context.Context, itemType string, limit int) ([]*model.ContentItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.popularCall = append(r.popularCall, limit)
	if r.popularErr != nil {
		return nil, r.popularErr
	}
	out := make([]*model.ContentItem, 0)
	for _, item := range r.items {
		if item.ItemType == itemType {
			out = append(out, item)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Views > out[j].Views })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeContentRepo) GetContentItems(_ context.Context, keys []model.ItemKey) (map[model.ItemKey]*model.ContentItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[model.ItemKey]*model.ContentItem)
	for _, item := range r.items {
		k := model.ItemKey{ItemID: item.ItemID, ItemType: item.ItemType}
		if slices.Contains(keys, k) {
			out[k] = item
		}
	}
	return out, nil
}

type fakeProgressRepo struct {
	mu       sync.Mutex
	progress map[uint64]*model.LearningProgress
	avgHours float64
	gets     int
}

func newFakeProgressRepo() *fakeProgressRepo {
	return &fakeProgressRepo{progress: make(map[uint64]*model.LearningProgress)}
}

func (r *fakeProgressRepo) GetProgress(_ context.Context, userID uint64) (*model.LearningProgress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gets++
	p, ok := r.progress[userID]
	if !ok {
		return nil, nil
	}
	return cloneProgress(p), nil
}

func (r *fakeProgressRepo) UpdateProgress(_ context.Context, userID uint64, fn func(p *model.LearningProgress) error) (*model.LearningProgress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current := model.NewLearningProgress(userID)
	if p, ok := r.progress[userID]; ok {
		current = cloneProgress(p)
	}
	if err := fn(current); err != nil {
		return nil, err
	}
	r.progress[userID] = cloneProgress(current)
	return current, nil
}

func (r *fakeProgressRepo) AverageLearningHours(context.Context) (float64, error) {
	return r.avgHours, nil
}

func (r *fakeProgressRepo) stored(userID uint64) *model.LearningProgress {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.progress[userID]
}

func cloneProgress(p *model.LearningProgress) *model.LearningProgress {
	raw, err := json.Marshal(p)
	if err != nil {
		panic(err)
	}
	var out model.LearningProgress
	if err = json.Unmarshal(raw, &out); err != nil {
		panic(err)
	}
	return &out
}

type fakeStatsRepo struct {
	mu      sync.Mutex
	stats   map[string]*model.CommunityLearningStats
	created int
}

func newFakeStatsRepo() *fakeStatsRepo {
	return &fakeStatsRepo{stats: make(map[string]*model.CommunityLearningStats)}
}

func (r *fakeStatsRepo) GetByDate(_ context.Context, date time.Time) (*model.CommunityLearningStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats[date.Format(time.DateOnly)], nil
}

func (r *fakeStatsRepo) CreateStats(_ context.Context, s *model.CommunityLearningStats) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := s.StatDate.Format(time.DateOnly)
	if _, ok := r.stats[key]; ok {
		return nil
	}
	r.created++
	r.stats[key] = s
	return nil
}

type fakeSnapshotRepo struct {
	mu    sync.Mutex
	snaps []*mongo.LearningSnapshot
}

func (r *fakeSnapshotRepo) SaveSnapshot(_ context.Context, snap *mongo.LearningSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snaps = append(r.snaps, snap)
	return nil
}

func (r *fakeSnapshotRepo) ListSnapshots(_ context.Context, userID uint64, limit int64) ([]*mongo.LearningSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*mongo.LearningSnapshot, 0)
	for i := len(r.snaps) - 1; i >= 0 && int64(len(out)) < limit; i-- {
		if r.snaps[i].UserID == userID {
			out = append(out, r.snaps[i])
		}
	}
	return out, nil
}

type fakeScheduler struct {
	mu       sync.Mutex
	reject   bool
	accepted []uint64
}

func (s *fakeScheduler) Submit(_ context.Context, userID uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reject {
		return false
	}
	s.accepted = append(s.accepted, userID)
	return true
}

type fakeDirty struct {
	mu      sync.Mutex
	members []string
}

func (d *fakeDirty) Mark(_ context.Context, member string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.members = append(d.members, member)
	return nil
}

type fakeLocker struct {
	busy     bool
	unlocked int
}

func (l *fakeLocker) TryLock(context.Context, string, string, time.Duration) (bool, error) {
	return !l.busy, nil
}

func (l *fakeLocker) UnLock(context.Context, string, string) {
	l.unlocked++
}
