package gateway

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/trendmart/storefront/internal/domain/recommend"
)

const defaultTimeout = 10 * time.Second

// Recommender calls an external recommendation service over HTTP. The
// service is model-backed and its replies are loosely formatted: the JSON
// payload sometimes arrives wrapped in markdown code fences, and the item
// list may be a bare array or nested under a "recommendations" key. The
// decoder tolerates both.
type Recommender struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// NewRecommender creates a client for the recommendation service at baseURL.
// A nil httpClient gets a default with a request timeout.
func NewRecommender(baseURL, apiKey string, httpClient *http.Client) *Recommender {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Recommender{
		client:  httpClient,
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

// Recommend fetches recommendations for the given user.
func (r *Recommender) Recommend(ctx context.Context, userID string) ([]recommend.Item, error) {
	u, err := url.JoinPath(r.baseURL, "recommendations")
	if err != nil {
		return nil, errors.Wrap(err, "build url")
	}
	u += "?user=" + url.QueryEscape(userID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	req.Header.Set("Accept", "application/json")
	if r.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.apiKey)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "do request")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("recommendation service: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, errors.Wrap(err, "read body")
	}

	items, err := decodeItems(stripFences(body))
	if err != nil {
		return nil, errors.Wrap(err, "decode response")
	}
	return items, nil
}

// stripFences removes a surrounding markdown code fence, with or without a
// language tag, leaving plain JSON.
func stripFences(b []byte) []byte {
	b = bytes.TrimSpace(b)
	if !bytes.HasPrefix(b, []byte("```")) {
		return b
	}
	b = bytes.TrimPrefix(b, []byte("```"))
	if i := bytes.IndexByte(b, '\n'); i >= 0 {
		// Drop the language tag line ("json", "javascript", ...).
		b = b[i+1:]
	}
	b = bytes.TrimSuffix(bytes.TrimSpace(b), []byte("```"))
	return bytes.TrimSpace(b)
}

func decodeItems(b []byte) ([]recommend.Item, error) {
	d := jx.DecodeBytes(b)
	switch d.Next() {
	case jx.Array:
		return decodeItemArray(d)
	case jx.Object:
		var items []recommend.Item
		if err := d.Obj(func(d *jx.Decoder, key string) error {
			switch key {
			case "recommendations", "items", "products":
				arr, err := decodeItemArray(d)
				if err != nil {
					return err
				}
				items = arr
				return nil
			default:
				return d.Skip()
			}
		}); err != nil {
			return nil, err
		}
		return items, nil
	default:
		return nil, errors.New("expected array or object")
	}
}

func decodeItemArray(d *jx.Decoder) ([]recommend.Item, error) {
	var items []recommend.Item
	if err := d.Arr(func(d *jx.Decoder) error {
		item, err := decodeItem(d)
		if err != nil {
			return err
		}
		items = append(items, item)
		return nil
	}); err != nil {
		return nil, err
	}
	return items, nil
}

func decodeItem(d *jx.Decoder) (recommend.Item, error) {
	var item recommend.Item
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "name", "title":
			s, err := d.Str()
			if err != nil {
				return err
			}
			item.Name = s
		case "description":
			s, err := d.Str()
			if err != nil {
				return err
			}
			item.Description = s
		case "image", "imageUrl":
			s, err := d.Str()
			if err != nil {
				return err
			}
			item.Image = s
		case "price":
			// The price arrives as a number or a numeric string.
			switch d.Next() {
			case jx.String:
				s, err := d.Str()
				if err != nil {
					return err
				}
				p, err := decimal.NewFromString(s)
				if err != nil {
					return errors.Wrap(err, "parse price")
				}
				item.Price = p
			default:
				n, err := d.Num()
				if err != nil {
					return err
				}
				p, err := decimal.NewFromString(n.String())
				if err != nil {
					return errors.Wrap(err, "parse price")
				}
				item.Price = p
			}
		default:
			return d.Skip()
		}
		return nil
	}); err != nil {
		return recommend.Item{}, err
	}
	return item, nil
}
