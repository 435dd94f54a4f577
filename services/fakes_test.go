package services

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/lib/pq"

	"tradie-match-server/apperror"
	"tradie-match-server/calendar"
	"tradie-match-server/events"
	"tradie-match-server/lifecycle"
	"tradie-match-server/logger"
	"tradie-match-server/models"
	"tradie-match-server/realtime"
)

// In-memory stand-ins for the stores and outbound services.

type fakeAccounts struct {
	mu       sync.Mutex
	byID     map[string]*models.Account
	profiles *fakeProfiles
	tokens   *fakeTokens
}

func newFakeAccounts(profiles *fakeProfiles, tokens *fakeTokens) *fakeAccounts {
	return &fakeAccounts{byID: map[string]*models.Account{}, profiles: profiles, tokens: tokens}
}

func (f *fakeAccounts) put(a models.Account) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[a.ID] = &a
}

func (f *fakeAccounts) CreateWithProfile(ctx context.Context, account *models.Account, profile *models.Profile) error {
	f.mu.Lock()
	for _, a := range f.byID {
		if a.Email == account.Email {
			f.mu.Unlock()
			return apperror.NewConflict("duplicate email", account.Email)
		}
	}
	cp := *account
	f.byID[account.ID] = &cp
	f.mu.Unlock()
	return f.profiles.Save(ctx, profile)
}

func (f *fakeAccounts) find(match func(*models.Account) bool, what string) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.byID {
		if match(a) {
			cp := *a
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("account", what)
}

func (f *fakeAccounts) FindByID(_ context.Context, id string) (*models.Account, error) {
	return f.find(func(a *models.Account) bool { return a.ID == id }, id)
}

func (f *fakeAccounts) FindByEmail(_ context.Context, email string) (*models.Account, error) {
	return f.find(func(a *models.Account) bool { return a.Email == email }, email)
}

func (f *fakeAccounts) FindByVerificationToken(_ context.Context, token string) (*models.Account, error) {
	return f.find(func(a *models.Account) bool { return token != "" && a.VerificationToken == token }, token)
}

func (f *fakeAccounts) FindByResetToken(_ context.Context, token string) (*models.Account, error) {
	return f.find(func(a *models.Account) bool { return token != "" && a.ResetToken == token }, token)
}

func (f *fakeAccounts) Save(_ context.Context, account *models.Account) error {
	f.put(*account)
	return nil
}

func (f *fakeAccounts) SoftDelete(ctx context.Context, account *models.Account, profile *models.Profile) error {
	f.put(*account)
	if err := f.profiles.Save(ctx, profile); err != nil {
		return err
	}
	return f.tokens.RevokeAll(ctx, account.ID)
}

type fakeTokens struct {
	mu     sync.Mutex
	tokens map[string]*models.RefreshToken
}

func newFakeTokens() *fakeTokens {
	return &fakeTokens{tokens: map[string]*models.RefreshToken{}}
}

func (f *fakeTokens) Create(_ context.Context, t *models.RefreshToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *t
	f.tokens[t.Token] = &cp
	return nil
}

func (f *fakeTokens) FindByToken(_ context.Context, token string) (*models.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tokens[token]
	if !ok {
		return nil, apperror.NewNotFound("refresh token", token)
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTokens) Revoke(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t, ok := f.tokens[token]; ok {
		t.IsRevoked = true
	}
	return nil
}

func (f *fakeTokens) RevokeAll(_ context.Context, accountID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tokens {
		if t.AccountID == accountID {
			t.IsRevoked = true
		}
	}
	return nil
}

func (f *fakeTokens) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for k, t := range f.tokens {
		if t.IsRevoked || t.IsExpired(now) {
			delete(f.tokens, k)
			n++
		}
	}
	return n, nil
}

type fakeProfiles struct {
	mu   sync.Mutex
	byID map[string]*models.Profile
}

func newFakeProfiles(ps ...models.Profile) *fakeProfiles {
	f := &fakeProfiles{byID: map[string]*models.Profile{}}
	for _, p := range ps {
		p := p
		f.byID[p.ID] = &p
	}
	return f
}

func (f *fakeProfiles) get(id string) models.Profile {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.byID[id]
}

func (f *fakeProfiles) FindByID(_ context.Context, id string) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	if !ok {
		return nil, apperror.NewNotFound("profile", id)
	}
	cp := *p
	cp.Calendar = p.Calendar.Clone()
	return &cp, nil
}

func (f *fakeProfiles) ListActive(_ context.Context) ([]models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Profile
	for _, p := range f.byID {
		if !p.Deleted {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeProfiles) Save(_ context.Context, p *models.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *p
	f.byID[p.ID] = &cp
	return nil
}

// Update applies the column map the services send.
func (f *fakeProfiles) Update(_ context.Context, id string, fields map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	if !ok {
		return apperror.NewNotFound("profile", id)
	}
	for k, v := range fields {
		switch k {
		case "name":
			p.Name = v.(string)
		case "age":
			p.Age = v.(int)
		case "location":
			p.Location = v.(string)
		case "trade":
			p.Trade = v.(string)
		case "hourly_rate":
			p.HourlyRate = v.(float64)
		case "bio":
			p.Bio = v.(string)
		case "incognito":
			p.Incognito = v.(bool)
		case "hide_distance":
			p.HideDistance = v.(bool)
		case "job_only_visibility":
			p.JobOnlyVisibility = v.(bool)
		case "blur_photos":
			p.BlurPhotos = v.(bool)
		case "latitude":
			lat := v.(float64)
			p.Latitude = &lat
		case "longitude":
			lng := v.(float64)
			p.Longitude = &lng
		case "location_accuracy":
			if acc, ok := v.(*float64); ok {
				p.LocationAccuracy = acc
			} else {
				p.LocationAccuracy = nil
			}
		case "location_updated_at":
			t := v.(time.Time)
			p.LocationUpdatedAt = &t
		case "photos":
			p.Photos = v.(pq.StringArray)
		case "photo_url":
			p.PhotoURL = v.(string)
		case "id_photo_url":
			p.IDPhotoURL = v.(string)
		case "verification_status":
			p.VerificationStatus = v.(models.VerificationStatus)
		case "calendar":
			p.Calendar = v.(calendar.Calendar)
		}
	}
	return nil
}

func (f *fakeProfiles) UpdateCalendar(ctx context.Context, id string, cal calendar.Calendar) error {
	return f.Update(ctx, id, map[string]interface{}{"calendar": cal})
}

func (f *fakeProfiles) UpdateRating(_ context.Context, id string, summary models.RatingSummary) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	if !ok {
		return apperror.NewNotFound("profile", id)
	}
	p.ReviewCount = summary.Count
	p.Rating = summary.Average
	if summary.Count == 0 {
		p.Rating = models.DefaultRating
	}
	return nil
}

type fakeJobs struct {
	mu      sync.Mutex
	byID    map[string]models.Job
	reviews *fakeReviews
	// beforeConditionalSave runs inside SaveIfStatus, simulating a
	// concurrent writer.
	beforeConditionalSave func(j *models.Job)
	// beforeReview runs once, outside the lock, at the start of the next
	// RecordReview.
	beforeReview func()
	// reviewErr fails the next RecordReview before anything is written.
	reviewErr error
}

func newFakeJobs() *fakeJobs {
	return &fakeJobs{byID: map[string]models.Job{}, reviews: &fakeReviews{}}
}

func (f *fakeJobs) get(id string) models.Job {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byID[id]
}

func (f *fakeJobs) Create(_ context.Context, job *models.Job) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[job.ID] = job.Clone()
	return nil
}

func (f *fakeJobs) FindByID(_ context.Context, id string) (*models.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	j, ok := f.byID[id]
	if !ok {
		return nil, apperror.NewNotFound("job", id)
	}
	cp := j.Clone()
	return &cp, nil
}

func (f *fakeJobs) Save(_ context.Context, job *models.Job) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[job.ID] = job.Clone()
	return nil
}

func (f *fakeJobs) SaveIfStatus(_ context.Context, job *models.Job, from models.JobStatus) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur := f.byID[job.ID]
	if f.beforeConditionalSave != nil {
		f.beforeConditionalSave(&cur)
		f.byID[job.ID] = cur
	}
	if cur.Status != from {
		return false, nil
	}
	f.byID[job.ID] = job.Clone()
	return true, nil
}

func (f *fakeJobs) RecordReview(ctx context.Context, r *models.Review, archive func(*models.Job)) (*models.Job, error) {
	f.mu.Lock()
	hook := f.beforeReview
	f.beforeReview = nil
	f.mu.Unlock()
	if hook != nil {
		hook()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.reviewErr; err != nil {
		f.reviewErr = nil
		return nil, err
	}
	j, ok := f.byID[r.JobID]
	if !ok {
		return nil, apperror.NewNotFound("job", r.JobID)
	}
	if err := f.reviews.Create(ctx, r); err != nil {
		return nil, err
	}
	if r.ReviewerRole == models.ReviewerTradie {
		j.TradieReviewed = true
	} else {
		j.ClientReviewed = true
	}
	if !j.Archived && j.ClientReviewed && j.TradieReviewed {
		archive(&j)
	}
	f.byID[j.ID] = j.Clone()
	cp := j.Clone()
	return &cp, nil
}

func (f *fakeJobs) ListForAccount(_ context.Context, accountID string) ([]models.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Job
	for _, j := range f.byID {
		if j.IsParty(accountID) {
			out = append(out, j.Clone())
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].ID < out[k].ID })
	return out, nil
}

func (f *fakeJobs) ListPaidBefore(_ context.Context, cutoff time.Time, limit int) ([]models.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Job
	for _, j := range f.byID {
		if j.Status == models.JobStatusPaymentComplete && j.PaymentCompletedAt != nil && !j.PaymentCompletedAt.After(cutoff) {
			out = append(out, j.Clone())
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].ID < out[k].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeAdverts struct {
	mu      sync.Mutex
	byID    map[string]models.JobAdvert
	hidden  map[string]bool
	created []models.Job
}

func newFakeAdverts() *fakeAdverts {
	return &fakeAdverts{byID: map[string]models.JobAdvert{}, hidden: map[string]bool{}}
}

func (f *fakeAdverts) Create(_ context.Context, a *models.JobAdvert) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[a.ID] = *a
	return nil
}

func (f *fakeAdverts) FindByID(_ context.Context, id string) (*models.JobAdvert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byID[id]
	if !ok {
		return nil, apperror.NewNotFound("advert", id)
	}
	return &a, nil
}

func (f *fakeAdverts) Delete(_ context.Context, id, clientID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byID[id]
	if !ok || a.ClientID != clientID {
		return apperror.NewNotFound("advert", id)
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeAdverts) ListByClient(_ context.Context, clientID string) ([]models.JobAdvert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.JobAdvert
	for _, a := range f.byID {
		if a.ClientID == clientID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAdverts) ListForTradie(_ context.Context, trade, tradieID string) ([]models.JobAdvert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.JobAdvert
	for _, a := range f.byID {
		if a.Trade == trade && a.ClientID != tradieID && !f.hidden[tradieID+"/"+a.ID] {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeAdverts) Hide(_ context.Context, h *models.HiddenAdvert) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hidden[h.TradieID+"/"+h.AdvertID] = true
	return nil
}

func (f *fakeAdverts) Accept(_ context.Context, advertID string, job *models.Job) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[advertID]; !ok {
		return apperror.NewNotFound("advert", advertID)
	}
	delete(f.byID, advertID)
	f.created = append(f.created, job.Clone())
	return nil
}

type fakeReviews struct {
	mu      sync.Mutex
	reviews []models.Review
}

func (f *fakeReviews) Create(_ context.Context, r *models.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, x := range f.reviews {
		if x.JobID == r.JobID && x.ReviewerID == r.ReviewerID {
			return apperror.NewConflict("duplicate review", r.JobID)
		}
	}
	f.reviews = append(f.reviews, *r)
	return nil
}

func (f *fakeReviews) ListForReviewed(_ context.Context, reviewedID string) ([]models.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Review
	for _, r := range f.reviews {
		if r.ReviewedID == reviewedID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReviews) ClientRatingSummary(_ context.Context, tradieID string) (models.RatingSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var sum models.RatingSummary
	total := 0
	for _, r := range f.reviews {
		if r.ReviewedID == tradieID && r.ReviewerRole == models.ReviewerClient {
			total += r.Rating
			sum.Count++
		}
	}
	if sum.Count > 0 {
		sum.Average = float64(total) / float64(sum.Count)
	}
	return sum, nil
}

type fakeBlocks struct {
	mu     sync.Mutex
	blocks []models.BlockedUser
}

func (f *fakeBlocks) Block(_ context.Context, b *models.BlockedUser) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, x := range f.blocks {
		if x.BlockedBy == b.BlockedBy && x.BlockedUserID == b.BlockedUserID {
			return nil
		}
	}
	f.blocks = append(f.blocks, *b)
	return nil
}

func (f *fakeBlocks) Unblock(_ context.Context, blockedBy, blockedUserID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.blocks[:0]
	for _, x := range f.blocks {
		if x.BlockedBy != blockedBy || x.BlockedUserID != blockedUserID {
			kept = append(kept, x)
		}
	}
	f.blocks = kept
	return nil
}

func (f *fakeBlocks) ListBlockedBy(_ context.Context, blockedBy string) ([]models.BlockedUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.BlockedUser
	for _, x := range f.blocks {
		if x.BlockedBy == blockedBy {
			out = append(out, x)
		}
	}
	return out, nil
}

func (f *fakeBlocks) EitherBlocked(_ context.Context, a, b string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, x := range f.blocks {
		if (x.BlockedBy == a && x.BlockedUserID == b) || (x.BlockedBy == b && x.BlockedUserID == a) {
			return true, nil
		}
	}
	return false, nil
}

type fakeChats struct {
	mu       sync.Mutex
	threads  map[string]*models.ChatThread
	messages []models.ChatMessage
}

func newFakeChats() *fakeChats {
	return &fakeChats{threads: map[string]*models.ChatThread{}}
}

func (f *fakeChats) FindOrCreateThread(_ context.Context, a, b string) (*models.ChatThread, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b < a {
		a, b = b, a
	}
	for _, t := range f.threads {
		if t.ParticipantA == a && t.ParticipantB == b {
			cp := *t
			return &cp, nil
		}
	}
	t := &models.ChatThread{ID: "thread-" + a + "-" + b, ParticipantA: a, ParticipantB: b}
	f.threads[t.ID] = t
	cp := *t
	return &cp, nil
}

func (f *fakeChats) FindThread(_ context.Context, id string) (*models.ChatThread, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.threads[id]
	if !ok {
		return nil, apperror.NewNotFound("chat", id)
	}
	cp := *t
	return &cp, nil
}

func (f *fakeChats) ListThreads(_ context.Context, accountID string) ([]models.ChatThread, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ChatThread
	for _, t := range f.threads {
		if t.HasParticipant(accountID) {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeChats) AddMessage(_ context.Context, msg *models.ChatMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, *msg)
	if t, ok := f.threads[msg.ThreadID]; ok {
		t.LastMessageText = msg.Body
		at := msg.CreatedAt
		t.LastMessageAt = &at
	}
	return nil
}

func (f *fakeChats) ListMessages(_ context.Context, threadID string, limit int) ([]models.ChatMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ChatMessage
	for _, m := range f.messages {
		if m.ThreadID == threadID {
			out = append(out, m)
		}
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

type fakeReports struct {
	mu      sync.Mutex
	reports []models.Report
}

func (f *fakeReports) Create(_ context.Context, r *models.Report) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reports = append(f.reports, *r)
	return nil
}

func (f *fakeReports) ListByReporter(_ context.Context, reporterID string) ([]models.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Report
	for _, r := range f.reports {
		if r.ReporterID == reporterID {
			out = append(out, r)
		}
	}
	return out, nil
}

// fakeFeed is a FeedCache backed by a map of JSON blobs.
type fakeFeed struct {
	mu      sync.Mutex
	data    map[string][]byte
	gets    int
	deletes int
}

func newFakeFeed() *fakeFeed {
	return &fakeFeed{data: map[string][]byte{}}
}

func (f *fakeFeed) GetJSON(_ context.Context, key string, out interface{}) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	b, ok := f.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, out)
}

func (f *fakeFeed) SetJSON(_ context.Context, key string, value interface{}, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.data[key] = b
	return nil
}

func (f *fakeFeed) Delete(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.data, k)
	}
	f.deletes++
	return nil
}

// recordingBroker keeps the last snapshot per topic.
type recordingBroker struct {
	mu   sync.Mutex
	last map[string]realtime.Snapshot
}

func newRecordingBroker() *recordingBroker {
	return &recordingBroker{last: map[string]realtime.Snapshot{}}
}

func (b *recordingBroker) Publish(topic string, kind realtime.Kind, payload interface{}) realtime.Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	snap := realtime.Snapshot{Topic: topic, Kind: kind, Version: b.last[topic].Version + 1, Payload: payload}
	b.last[topic] = snap
	return snap
}

func (b *recordingBroker) latest(topic string) (realtime.Snapshot, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.last[topic]
	return s, ok
}

type recordingEvents struct {
	mu     sync.Mutex
	events []events.JobEvent
}

func (r *recordingEvents) PublishJobEvent(_ context.Context, ev events.JobEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recordingEvents) Close() error { return nil }

func (r *recordingEvents) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Event
	}
	return out
}

type fakeUploader struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (u *fakeUploader) UploadJobPhotos(_ context.Context, jobID string, files []Upload) ([]string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.calls++
	if u.err != nil {
		return nil, u.err
	}
	urls := make([]string, len(files))
	for i, f := range files {
		urls[i] = "https://img.test/jobs/" + jobID + "/" + f.Filename
	}
	return urls, nil
}

func (u *fakeUploader) UploadProfilePhoto(_ context.Context, accountID string, file Upload) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.calls++
	if u.err != nil {
		return "", u.err
	}
	return "https://img.test/profiles/" + accountID + "/" + file.Filename, nil
}

func (u *fakeUploader) UploadIDPhoto(_ context.Context, accountID string, file Upload) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.calls++
	if u.err != nil {
		return "", u.err
	}
	return "https://img.test/id/" + accountID + "/" + file.Filename, nil
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []string
}

func (m *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, to+"|"+subject+"|"+body)
	return nil
}

func (m *fakeMailer) last() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return ""
	}
	return m.sent[len(m.sent)-1]
}

// fixedClock returns a clock stuck at t.
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func testMachine(now time.Time) *lifecycle.Machine {
	return &lifecycle.Machine{
		Now:               fixedClock(now),
		InvoiceID:         lifecycle.NewInvoiceID,
		PaymentStartDelay: time.Second,
	}
}

var nopLog = logger.Nop()
