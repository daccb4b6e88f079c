package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/bbangting/auth/internal/models"
	"github.com/bbangting/auth/internal/util"
)

// AuditIndexer keeps a searchable history of logins.
type AuditIndexer struct {
	ES    *elasticsearch.Client
	Index string
}

func (a *AuditIndexer) NotifyLogin(ctx context.Context, u models.User) error {
	body, err := json.Marshal(NewLoginEvent(u, time.Now()))
	if err != nil {
		return fmt.Errorf("elasticsearch: marshal: %w", err)
	}

	res, err := a.ES.Index(a.Index, bytes.NewReader(body), a.ES.Index.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch: index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("elasticsearch: index %s: %s", a.Index, res.Status())
	}
	return nil
}

// RecentLogins returns one page of login events for email, newest first,
// together with the total number of matching events.
func (a *AuditIndexer) RecentLogins(ctx context.Context, email string, page, size int) (int64, []LoginEvent, error) {
	from, limit := util.Calculate(page, size)
	query := map[string]any{
		"query": map[string]any{
			"term": map[string]any{"email.keyword": email},
		},
		"sort": []any{map[string]any{"at": map[string]any{"order": "desc"}}},
		"from": from,
		"size": limit,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(query); err != nil {
		return 0, nil, fmt.Errorf("elasticsearch: encode query: %w", err)
	}

	res, err := a.ES.Search(
		a.ES.Search.WithContext(ctx),
		a.ES.Search.WithIndex(a.Index),
		a.ES.Search.WithBody(&buf),
		a.ES.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("elasticsearch: search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, fmt.Errorf("elasticsearch: search %s: %s", a.Index, res.Status())
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source LoginEvent `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("elasticsearch: decode: %w", err)
	}

	events := make([]LoginEvent, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		events[i] = hit.Source
	}
	return r.Hits.Total.Value, events, nil
}
