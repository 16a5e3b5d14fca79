package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"mdip/core/store"
	"mdip/core/utils"
)

// Outcome of a chat turn. "disabled" means no API key is set for the domain;
// "refused" means the blocklist caught the question before it left the house.
const (
	OutcomeAnswered = "answered"
	OutcomeRefused  = "refused"
	OutcomeDisabled = "disabled"
)

type Reply struct {
	Text    string `json:"text"`
	Outcome string `json:"outcome"`
}

type Options struct {
	BaseURL string
	Model   string
	Timeout time.Duration
	// Keys maps domain name to its API key. A missing or empty key disables
	// that domain's assistant without affecting the others.
	Keys map[string]string
}

// Service routes questions to per-domain assistants. Each domain sees only its
// own collection's statistics and carries its own credentials.
type Service struct {
	opts      Options
	client    *geminiClient
	incidents store.IncidentsStore
	datasets  store.DatasetsStore
	tickets   store.TicketsStore
	logger    *utils.Logger
}

func NewService(opts Options, incidents store.IncidentsStore, datasets store.DatasetsStore, tickets store.TicketsStore, logger *utils.Logger) *Service {
	return &Service{
		opts:      opts,
		client:    newGeminiClient(opts.BaseURL, opts.Model, opts.Timeout),
		incidents: incidents,
		datasets:  datasets,
		tickets:   tickets,
		logger:    logger,
	}
}

func (s *Service) Enabled(domain string) bool {
	return s.opts.Keys[domain] != ""
}

// Chat answers a question within a domain. Questions touching another
// domain's blocked topics get the fixed refusal; a domain without a key gets
// a setup notice. Neither case is an error.
func (s *Service) Chat(ctx context.Context, domain, question string) (*Reply, error) {
	cfg, ok := domainConfigs[domain]
	if !ok {
		return nil, fmt.Errorf("%w: unknown assistant domain %q", store.ErrValidation, domain)
	}
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("%w: empty question", store.ErrValidation)
	}
	key := s.opts.Keys[domain]
	if key == "" {
		return &Reply{Text: disabledNotice(cfg.name), Outcome: OutcomeDisabled}, nil
	}
	if cfg.blocked(question) {
		s.logger.Printf("assistant %s refused off-topic question", domain)
		return &Reply{Text: cfg.refusal, Outcome: OutcomeRefused}, nil
	}
	dataCtx, err := s.dataContext(ctx, domain)
	if err != nil {
		return nil, err
	}
	prompt := fmt.Sprintf(`%s

%s

User question: %s

Remember: You can ONLY answer questions related to %s.
If this question is outside your domain, politely decline and explain your restrictions.`,
		cfg.systemPrompt, dataCtx, question, strings.ReplaceAll(domain, "_", " "))

	text, err := s.client.generate(ctx, key, prompt)
	if err != nil {
		return nil, err
	}
	return &Reply{Text: text, Outcome: OutcomeAnswered}, nil
}

// Analyze runs the domain's canned analysis task over its live statistics.
func (s *Service) Analyze(ctx context.Context, domain string) (*Reply, error) {
	cfg, ok := domainConfigs[domain]
	if !ok {
		return nil, fmt.Errorf("%w: unknown assistant domain %q", store.ErrValidation, domain)
	}
	key := s.opts.Keys[domain]
	if key == "" {
		return &Reply{Text: disabledNotice(cfg.name), Outcome: OutcomeDisabled}, nil
	}
	dataCtx, err := s.dataContext(ctx, domain)
	if err != nil {
		return nil, err
	}
	prompt := cfg.analysisTask + "\n\n" + dataCtx
	text, err := s.client.generate(ctx, key, prompt)
	if err != nil {
		return nil, err
	}
	return &Reply{Text: text, Outcome: OutcomeAnswered}, nil
}

func disabledNotice(name string) string {
	return name + " is not configured. Set the domain's API key and restart the service."
}

// dataContext renders the domain's live statistics into the prompt. A domain
// never sees another domain's numbers.
func (s *Service) dataContext(ctx context.Context, domain string) (string, error) {
	switch domain {
	case "cybersecurity":
		st, err := s.incidents.Stats(ctx)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf(`CYBERSECURITY INCIDENT DATA (Your ONLY data source):
- Total incidents: %d
- By status: %v
- By severity: %v
- By threat type: %v
- Average resolution time: %.2f hours

You can ONLY analyze and discuss this security incident data.`,
			st.Total, st.ByStatus, st.BySeverity, st.ByThreatType, st.AvgResolutionHours), nil
	case "datascience":
		st, err := s.datasets.Stats(ctx)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf(`DATASET CATALOG DATA (Your ONLY data source):
- Total datasets: %d
- Total storage: %.2f GB
- By department: %v
- By status: %v
- Average quality score: %.2f

You can ONLY analyze and discuss this dataset catalog data.`,
			st.Total, st.TotalSizeGB, st.ByDepartment, st.ByStatus, st.AvgQualityScore), nil
	case "it_operations":
		st, err := s.tickets.Stats(ctx)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf(`IT TICKET DATA (Your ONLY data source):
- Total tickets: %d
- By status: %v
- By category: %v
- By assigned staff: %v
- SLA compliance: %.2f%%
- Average resolution time: %.2f hours

You can ONLY analyze and discuss this IT ticket data.`,
			st.Total, st.ByStatus, st.ByCategory, st.ByAssignee, st.SLACompliancePct, st.AvgResolutionHours), nil
	}
	return "", nil
}
