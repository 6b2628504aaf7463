package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	appErrors "github.com/unclebandit/autoreachpro-backend/internal/errors"
	"github.com/unclebandit/autoreachpro-backend/internal/mailer"
	"github.com/unclebandit/autoreachpro-backend/internal/metrics"
	"github.com/unclebandit/autoreachpro-backend/internal/model"
	"github.com/unclebandit/autoreachpro-backend/internal/notify"
	"github.com/unclebandit/autoreachpro-backend/internal/personalize"
	"github.com/unclebandit/autoreachpro-backend/internal/queue"
	"github.com/unclebandit/autoreachpro-backend/internal/quota"
	"github.com/unclebandit/autoreachpro-backend/internal/repository"
)

// RecipientResult reports what happened to one lead.
type RecipientResult struct {
	LeadID    string `json:"lead_id"`
	Email     string `json:"email"`
	Success   bool   `json:"success"`
	MessageID string `json:"message_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Result struct for SendCampaign
type SendCampaignResult struct {
	CampaignID string            `json:"campaign_id"`
	Total      int               `json:"total"`
	Sent       int               `json:"sent"`
	Failed     int               `json:"failed"`
	Skipped    int               `json:"skipped"`
	Details    []RecipientResult `json:"details"`
}

// DefaultSendLease is how long a "sending" campaign may go without a
// heartbeat before another caller can take it over.
const DefaultSendLease = 10 * time.Minute

// SendCampaign delivers a campaign to every recipient not yet sent.
//
// Only one caller can move the campaign into "sending"; the others get
// ErrAlreadySending. A failed campaign, or one left in "sending" by a process
// that stopped heartbeating, may be sent again and picks up where it stopped.
// The run is detached from ctx cancellation so a client disconnect does not
// leave the campaign half-sent in "sending".
func (s *CampaignService) SendCampaign(ctx context.Context, userID, id string) (*SendCampaignResult, error) {
	ctx = context.WithoutCancel(ctx)
	log := s.log().With(zap.String("campaign_id", id), zap.String("user_id", userID))

	campaign, err := s.CampaignRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	lease := s.sendLease()
	ok, err := s.CampaignRepo.ClaimSend(ctx, userID, id, time.Now().Add(-lease))
	if err != nil {
		return nil, err
	}
	if !ok {
		metrics.CampaignSends.WithLabelValues("rejected").Inc()
		return nil, appErrors.ErrAlreadySending
	}
	log.Info("campaign send started", zap.String("from_status", string(campaign.Status)))

	stop := s.heartbeat(ctx, userID, id, lease/3, log)
	result, err := s.deliver(ctx, campaign, log)
	stop()
	if err != nil {
		log.Error("campaign send failed", zap.Error(err))
		if uerr := s.CampaignRepo.UpdateStatus(ctx, userID, id, model.CampaignFailed); uerr != nil {
			log.Error("failed to mark campaign failed", zap.Error(uerr))
		}
		metrics.CampaignSends.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("send campaign %s: %w", id, err)
	}

	metrics.CampaignSends.WithLabelValues("sent").Inc()
	log.Info("campaign send finished",
		zap.Int("sent", result.Sent),
		zap.Int("failed", result.Failed),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}

func (s *CampaignService) sendLease() time.Duration {
	if s.SendLease > 0 {
		return s.SendLease
	}
	return DefaultSendLease
}

// heartbeat keeps the send claim fresh until the returned stop is called.
func (s *CampaignService) heartbeat(ctx context.Context, userID, id string, every time.Duration, log *zap.Logger) (stop func()) {
	if every <= 0 {
		every = time.Second
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		t := time.NewTicker(every)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				if err := s.CampaignRepo.Heartbeat(ctx, userID, id); err != nil {
					log.Warn("campaign heartbeat failed", zap.Error(err))
				}
			}
		}
	}()
	return func() {
		cancel()
		<-done
	}
}

func (s *CampaignService) deliver(ctx context.Context, c *model.Campaign, log *zap.Logger) (*SendCampaignResult, error) {
	recipients, err := s.CampaignRepo.ListRecipients(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	settings, err := loadSettings(ctx, s.SettingsRepo, c.UserID)
	if err != nil {
		return nil, err
	}

	result := &SendCampaignResult{
		CampaignID: c.ID,
		Total:      len(recipients),
		Details:    []RecipientResult{},
	}

	pending := make([]*model.CampaignLead, 0, len(recipients))
	for _, r := range recipients {
		if r.Status == model.RecipientSent {
			result.Skipped++
			continue
		}
		pending = append(pending, r)
	}

	messages := s.personalizeAll(ctx, c, settings, pending)

	provider := s.Mailers.For(c.UserID, mailer.Credentials{
		ResendAPIKey: settings.ResendAPIKey,
		SMTPURL:      settings.SMTPURL,
		From:         fromAddress(settings),
	})
	log.Debug("dispatching", zap.String("provider", provider.Name()), zap.Int("recipients", len(pending)))

	every := rate.Inf
	if s.Pacing > 0 {
		every = rate.Every(s.Pacing)
	}
	pacer := rate.NewLimiter(every, 1)

	sentLeadIDs := []string{}
	for i, r := range pending {
		if err := pacer.Wait(ctx); err != nil {
			return nil, err
		}

		res := s.dispatch(ctx, provider, c.UserID, settings, r.Lead, messages[i])

		rec := repository.RecipientResult{PersonalizedSubject: messages[i].Subject}
		if res.Success {
			now := time.Now().UTC()
			rec.Status = model.RecipientSent
			rec.SentAt = &now
			rec.MessageID = res.MessageID
			result.Sent++
			sentLeadIDs = append(sentLeadIDs, r.LeadID)
		} else {
			rec.Status = model.RecipientFailed
			rec.ErrorMessage = res.Error
			result.Failed++
		}
		if err := s.CampaignRepo.RecordResult(ctx, r.ID, rec); err != nil {
			return nil, err
		}

		result.Details = append(result.Details, RecipientResult{
			LeadID:    r.LeadID,
			Email:     r.Lead.Email,
			Success:   res.Success,
			MessageID: res.MessageID,
			Error:     res.Error,
		})
	}

	finishedAt := time.Now().UTC()
	if err := s.CampaignRepo.Finish(ctx, c.UserID, c.ID, result.Sent, finishedAt); err != nil {
		return nil, err
	}

	s.announce(ctx, c, settings, result, sentLeadIDs, finishedAt, log)
	return result, nil
}

// personalizeAll returns one message per recipient, in order. LLM calls run
// concurrently; substitution is used when AI is off or no key is set.
func (s *CampaignService) personalizeAll(ctx context.Context, c *model.Campaign, settings *model.UserSettings, recipients []*model.CampaignLead) []personalize.Result {
	tmpl := personalize.Template{Subject: c.Subject, Content: c.Content}
	sender := settings.SenderName
	out := make([]personalize.Result, len(recipients))

	apiKey := settings.OpenAIAPIKey
	if apiKey == "" {
		apiKey = s.DefaultLLMKey
	}
	if !c.UseAIPersonalization || apiKey == "" || s.Personalizer == nil {
		for i, r := range recipients {
			out[i] = personalize.Substitute(tmpl, personalize.FromLead(r.Lead), sender)
			metrics.Personalizations.WithLabelValues("fallback").Inc()
		}
		return out
	}

	limit := s.PersonalizeConcurrency
	if limit < 1 {
		limit = 1
	}
	var g errgroup.Group
	g.SetLimit(limit)
	for i, r := range recipients {
		i, r := i, r
		g.Go(func() error {
			out[i] = s.Personalizer.Personalize(ctx, apiKey, tmpl, personalize.FromLead(r.Lead), sender)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (s *CampaignService) dispatch(ctx context.Context, provider mailer.Provider, userID string, settings *model.UserSettings, lead *model.Lead, msg personalize.Result) mailer.Result {
	limiter := s.Quota
	if limiter == nil {
		limiter = quota.Unlimited{}
	}
	allowed, err := limiter.Allow(ctx, userID, settings.DailyEmailLimit)
	if err != nil {
		// The quota store being down must not block sending.
		s.log().Warn("quota check failed, allowing send", zap.String("user_id", userID), zap.Error(err))
		allowed = true
	}
	if !allowed {
		metrics.EmailsDispatched.WithLabelValues("over_quota").Inc()
		return mailer.Result{Error: appErrors.ErrQuotaExceeded.Error()}
	}

	body := msg.Content
	if settings.EmailSignature != "" {
		body += "\n\n" + settings.EmailSignature
	}

	res := provider.Send(ctx, mailer.Message{
		To:      lead.Email,
		Subject: msg.Subject,
		HTML:    mailer.HTMLBody(body),
		From:    fromAddress(settings),
	})
	if res.Success {
		metrics.EmailsDispatched.WithLabelValues("sent").Inc()
	} else {
		metrics.EmailsDispatched.WithLabelValues("failed").Inc()
	}
	return res
}

// announce posts the webhook summary and publishes the completion event.
// Both are best effort.
func (s *CampaignService) announce(ctx context.Context, c *model.Campaign, settings *model.UserSettings, result *SendCampaignResult, sentLeadIDs []string, at time.Time, log *zap.Logger) {
	if settings.SlackWebhook != "" && s.Notifier != nil {
		if err := s.Notifier.Notify(ctx, settings.SlackWebhook, notify.CampaignSummary(c.Name, result.Sent, result.Failed)); err != nil {
			log.Warn("webhook notification failed", zap.Error(err))
		}
	}

	if s.Queue != nil {
		ev := queue.CampaignCompletedEvent{
			CampaignID:  c.ID,
			UserID:      c.UserID,
			SentLeadIDs: sentLeadIDs,
			Failed:      result.Failed,
			SentAt:      at,
		}
		if err := s.Queue.Publish(queue.TopicCampaignCompleted, ev); err != nil {
			log.Warn("failed to publish campaign completed event", zap.Error(err))
		}
	}
}

func fromAddress(st *model.UserSettings) string {
	if st.FromEmail == "" {
		return ""
	}
	if st.SenderName == "" {
		return st.FromEmail
	}
	return fmt.Sprintf("%s <%s>", st.SenderName, st.FromEmail)
}
