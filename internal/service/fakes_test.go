package service_test

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	appErrors "github.com/unclebandit/autoreachpro-backend/internal/errors"
	"github.com/unclebandit/autoreachpro-backend/internal/mailer"
	"github.com/unclebandit/autoreachpro-backend/internal/model"
	"github.com/unclebandit/autoreachpro-backend/internal/repository"
)

// ====================== Leads ======================

type MockLeadRepo struct {
	mu        sync.Mutex
	leads     map[string]*model.Lead
	seq       int
	contacted []string
}

func NewMockLeadRepo(leads ...*model.Lead) *MockLeadRepo {
	m := &MockLeadRepo{leads: map[string]*model.Lead{}}
	for _, l := range leads {
		m.leads[l.ID] = l
	}
	return m
}

func (m *MockLeadRepo) Create(ctx context.Context, l *model.Lead) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ex := range m.leads {
		if ex.UserID == l.UserID && strings.EqualFold(ex.Email, l.Email) {
			return appErrors.ErrDuplicateLead
		}
	}
	m.seq++
	if l.ID == "" {
		l.ID = fmt.Sprintf("lead-%d", m.seq)
	}
	l.CreatedAt = time.Now()
	cp := *l
	m.leads[l.ID] = &cp
	return nil
}

func (m *MockLeadRepo) GetByID(ctx context.Context, userID, id string) (*model.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.leads[id]
	if !ok || l.UserID != userID {
		return nil, appErrors.NewLeadNotFound(id)
	}
	cp := *l
	return &cp, nil
}

func (m *MockLeadRepo) FindByEmail(ctx context.Context, userID, email string) (*model.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.leads {
		if l.UserID == userID && strings.EqualFold(l.Email, email) {
			cp := *l
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *MockLeadRepo) List(ctx context.Context, userID string, f repository.LeadFilter) ([]*model.Lead, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := []*model.Lead{}
	for _, l := range m.leads {
		if l.UserID == userID && (f.Status == "" || string(l.Status) == f.Status) {
			all = append(all, l)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	return page(all, f.Offset, f.Limit), len(all), nil
}

func (m *MockLeadRepo) Update(ctx context.Context, l *model.Lead) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.leads[l.ID]; !ok {
		return appErrors.NewLeadNotFound(l.ID)
	}
	cp := *l
	m.leads[l.ID] = &cp
	return nil
}

func (m *MockLeadRepo) Delete(ctx context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.leads[id]
	if !ok || l.UserID != userID {
		return appErrors.NewLeadNotFound(id)
	}
	delete(m.leads, id)
	return nil
}

func (m *MockLeadRepo) MarkContacted(ctx context.Context, userID string, ids []string, at time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, id := range ids {
		l, ok := m.leads[id]
		if !ok || l.UserID != userID {
			continue
		}
		if l.Status == model.LeadNew {
			l.Status = model.LeadContacted
		}
		t := at
		l.LastContactDate = &t
		m.contacted = append(m.contacted, id)
		n++
	}
	return n, nil
}

func (m *MockLeadRepo) CountByStatus(ctx context.Context, userID string) (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]int{}
	for _, l := range m.leads {
		if l.UserID == userID {
			out[string(l.Status)]++
		}
	}
	return out, nil
}

func (m *MockLeadRepo) Count(ctx context.Context, userID string) (int, error) {
	counts, _ := m.CountByStatus(ctx, userID)
	total := 0
	for _, n := range counts {
		total += n
	}
	return total, nil
}

func (m *MockLeadRepo) lead(id string) *model.Lead {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.leads[id]
}

// ====================== Campaigns ======================

type MockCampaignRepo struct {
	mu         sync.Mutex
	campaigns  map[string]*model.Campaign
	recipients map[string][]*model.CampaignLead
	results    map[string]repository.RecipientResult

	// recordErr, when set, is returned by RecordResult.
	recordErr  error
	heartbeats int
}

func NewMockCampaignRepo(campaigns ...*model.Campaign) *MockCampaignRepo {
	m := &MockCampaignRepo{
		campaigns:  map[string]*model.Campaign{},
		recipients: map[string][]*model.CampaignLead{},
		results:    map[string]repository.RecipientResult{},
	}
	for _, c := range campaigns {
		m.campaigns[c.ID] = c
	}
	return m
}

func (m *MockCampaignRepo) addRecipient(campaignID string, l *model.Lead, status model.RecipientStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recipients[campaignID] = append(m.recipients[campaignID], &model.CampaignLead{
		ID:         "cl-" + l.ID,
		CampaignID: campaignID,
		LeadID:     l.ID,
		Status:     status,
		Lead:       l,
	})
}

func (m *MockCampaignRepo) Create(ctx context.Context, c *model.Campaign) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID == "" {
		c.ID = fmt.Sprintf("camp-%d", len(m.campaigns)+1)
	}
	cp := *c
	m.campaigns[c.ID] = &cp
	return nil
}

func (m *MockCampaignRepo) GetByID(ctx context.Context, userID, id string) (*model.Campaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.campaigns[id]
	if !ok || c.UserID != userID {
		return nil, appErrors.NewCampaignNotFound(id)
	}
	cp := *c
	return &cp, nil
}

func (m *MockCampaignRepo) List(ctx context.Context, userID string, f repository.CampaignFilter) ([]*model.Campaign, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := []*model.Campaign{}
	for _, c := range m.campaigns {
		if c.UserID == userID && (f.Status == "" || string(c.Status) == f.Status) {
			all = append(all, c)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	return page(all, f.Offset, f.Limit), len(all), nil
}

func (m *MockCampaignRepo) Update(ctx context.Context, c *model.Campaign) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.campaigns[c.ID] = &cp
	return nil
}

func (m *MockCampaignRepo) Delete(ctx context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.campaigns, id)
	return nil
}

func (m *MockCampaignRepo) Count(ctx context.Context, userID string) (int, error) {
	_, n, err := m.List(ctx, userID, repository.CampaignFilter{})
	return n, err
}

func (m *MockCampaignRepo) Aggregates(ctx context.Context, userID string) (repository.CampaignAggregates, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var a repository.CampaignAggregates
	for _, c := range m.campaigns {
		if c.UserID == userID {
			a.EmailsSent += c.EmailsSent
			a.EmailsOpened += c.EmailsOpened
			a.EmailsReplied += c.EmailsReplied
		}
	}
	return a, nil
}

func (m *MockCampaignRepo) ClaimSend(ctx context.Context, userID, id string, staleBefore time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.campaigns[id]
	if !ok || c.UserID != userID {
		return false, nil
	}
	stale := c.Status == model.CampaignSending && c.UpdatedAt.Before(staleBefore)
	if !c.Status.Sendable() && !stale {
		return false, nil
	}
	c.Status = model.CampaignSending
	c.UpdatedAt = time.Now()
	return true, nil
}

func (m *MockCampaignRepo) Heartbeat(ctx context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.campaigns[id]; ok && c.Status == model.CampaignSending {
		c.UpdatedAt = time.Now()
		m.heartbeats++
	}
	return nil
}

func (m *MockCampaignRepo) UpdateStatus(ctx context.Context, userID, id string, status model.CampaignStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.campaigns[id].Status = status
	return nil
}

func (m *MockCampaignRepo) Finish(ctx context.Context, userID, id string, sent int, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.campaigns[id]
	c.Status = model.CampaignSent
	c.EmailsSent += sent
	c.SentAt = &at
	return nil
}

func (m *MockCampaignRepo) AttachLeads(ctx context.Context, userID, campaignID string, leadIDs []string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range leadIDs {
		m.recipients[campaignID] = append(m.recipients[campaignID], &model.CampaignLead{
			ID: "cl-" + id, CampaignID: campaignID, LeadID: id, Status: model.RecipientPending,
		})
	}
	m.campaigns[campaignID].TotalLeads = len(m.recipients[campaignID])
	return len(leadIDs), nil
}

func (m *MockCampaignRepo) ListRecipients(ctx context.Context, campaignID string) ([]*model.CampaignLead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.CampaignLead, len(m.recipients[campaignID]))
	for i, r := range m.recipients[campaignID] {
		cp := *r
		out[i] = &cp
	}
	return out, nil
}

func (m *MockCampaignRepo) RecordResult(ctx context.Context, campaignLeadID string, res repository.RecipientResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.recordErr != nil {
		return m.recordErr
	}
	m.results[campaignLeadID] = res
	for _, rs := range m.recipients {
		for _, r := range rs {
			if r.ID == campaignLeadID {
				r.Status = res.Status
			}
		}
	}
	return nil
}

func (m *MockCampaignRepo) RecipientStats(ctx context.Context, campaignID string) (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := map[string]int{"pending": 0, "sent": 0, "failed": 0}
	for _, r := range m.recipients[campaignID] {
		stats[string(r.Status)]++
	}
	return stats, nil
}

func (m *MockCampaignRepo) campaign(id string) *model.Campaign {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *m.campaigns[id]
	return &cp
}

func (m *MockCampaignRepo) result(campaignLeadID string) (repository.RecipientResult, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.results[campaignLeadID]
	return r, ok
}

// ====================== Templates / settings ======================

type MockTemplateRepo struct {
	mu        sync.Mutex
	templates map[string]*model.EmailTemplate
	failMany  bool
}

func NewMockTemplateRepo(ts ...*model.EmailTemplate) *MockTemplateRepo {
	m := &MockTemplateRepo{templates: map[string]*model.EmailTemplate{}}
	for _, t := range ts {
		m.templates[t.ID] = t
	}
	return m
}

func (m *MockTemplateRepo) List(ctx context.Context, userID string) ([]*model.EmailTemplate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*model.EmailTemplate{}
	for _, t := range m.templates {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *MockTemplateRepo) GetByID(ctx context.Context, userID, id string) (*model.EmailTemplate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.templates[id]
	if !ok || t.UserID != userID {
		return nil, appErrors.NewTemplateNotFound(id)
	}
	cp := *t
	return &cp, nil
}

func (m *MockTemplateRepo) Create(ctx context.Context, t *model.EmailTemplate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.ID == "" {
		t.ID = fmt.Sprintf("tpl-%d", len(m.templates)+1)
	}
	m.templates[t.ID] = t
	return nil
}

func (m *MockTemplateRepo) CreateMany(ctx context.Context, ts []*model.EmailTemplate) error {
	if m.failMany {
		return fmt.Errorf("insert failed")
	}
	for _, t := range ts {
		m.Create(ctx, t)
	}
	return nil
}

func (m *MockTemplateRepo) Update(ctx context.Context, t *model.EmailTemplate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.templates[t.ID] = t
	return nil
}

func (m *MockTemplateRepo) Delete(ctx context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.templates, id)
	return nil
}

func (m *MockTemplateRepo) IncrementUsage(ctx context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.templates[id].UsageCount++
	return nil
}

type MockSettingsRepo struct {
	mu       sync.Mutex
	settings map[string]*model.UserSettings
}

func NewMockSettingsRepo(ss ...*model.UserSettings) *MockSettingsRepo {
	m := &MockSettingsRepo{settings: map[string]*model.UserSettings{}}
	for _, s := range ss {
		m.settings[s.UserID] = s
	}
	return m
}

func (m *MockSettingsRepo) Get(ctx context.Context, userID string) (*model.UserSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.settings[userID]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (m *MockSettingsRepo) Upsert(ctx context.Context, s *model.UserSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.settings[s.UserID] = &cp
	return nil
}

// ====================== Delivery ======================

// MockProvider returns outcomes in order, then succeeds.
type MockProvider struct {
	mu       sync.Mutex
	outcomes []bool
	sent     []mailer.Message
}

func (p *MockProvider) Name() string { return "mock" }

func (p *MockProvider) Send(ctx context.Context, msg mailer.Message) mailer.Result {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, msg)
	ok := true
	if len(p.outcomes) > 0 {
		ok, p.outcomes = p.outcomes[0], p.outcomes[1:]
	}
	if !ok {
		return mailer.Result{Error: "mailbox unavailable"}
	}
	return mailer.Result{Success: true, MessageID: fmt.Sprintf("msg-%d", len(p.sent))}
}

func (p *MockProvider) messages() []mailer.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]mailer.Message(nil), p.sent...)
}

type MockMailers struct {
	Provider *MockProvider
	creds    []mailer.Credentials
}

func (m *MockMailers) For(tenantID string, creds mailer.Credentials) mailer.Provider {
	m.creds = append(m.creds, creds)
	return m.Provider
}

type MockQuota struct {
	mu    sync.Mutex
	left  int
	calls int
}

func (q *MockQuota) Allow(ctx context.Context, tenantID string, limit int) (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.calls++
	if q.left <= 0 {
		return false, nil
	}
	q.left--
	return true, nil
}

type MockNotifier struct {
	mu    sync.Mutex
	texts []string
}

func (n *MockNotifier) Notify(ctx context.Context, url, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.texts = append(n.texts, text)
	return nil
}

type MockQueue struct {
	mu        sync.Mutex
	published []any
}

func (q *MockQueue) Publish(topic string, payload any) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.published = append(q.published, payload)
	return nil
}

func (q *MockQueue) Subscribe(topic string, handler func(payload any) error) error { return nil }

func page[T any](all []T, offset, limit int) []T {
	if limit <= 0 {
		return all
	}
	if offset >= len(all) {
		return []T{}
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end]
}
