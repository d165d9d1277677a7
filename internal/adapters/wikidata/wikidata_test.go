package wikidata_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/okian/playerhunt/internal/adapters/wikidata"
	"github.com/okian/playerhunt/internal/domain/disambiguate"
	"github.com/okian/playerhunt/internal/domain/model"
	"github.com/okian/playerhunt/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

type hit struct {
	ID          string `json:"id"`
	Label       string `json:"label,omitempty"`
	Description string `json:"description,omitempty"`
}

// fakeWikidata serves canned wbsearchentities and wbgetentities responses.
type fakeWikidata struct {
	mu        sync.Mutex
	searches  map[string][]hit
	claims    map[string]map[string][]string // entity -> property -> item IDs
	labels    map[string]string
	failures  map[string]int // search term or entity ID -> status code
	terms     []string
	labelHits map[string]*atomic.Int32
	userAgent string
	delay     time.Duration
}

func newFake() *fakeWikidata {
	return &fakeWikidata{
		searches:  map[string][]hit{},
		claims:    map[string]map[string][]string{},
		labels:    map[string]string{},
		failures:  map[string]int{},
		labelHits: map[string]*atomic.Int32{},
	}
}

func (f *fakeWikidata) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f.mu.Lock()
	f.userAgent = r.Header.Get("User-Agent")
	delay := f.delay
	f.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}

	switch q.Get("action") {
	case "wbsearchentities":
		term := q.Get("search")
		f.mu.Lock()
		f.terms = append(f.terms, term)
		code, failed := f.failures[term]
		hits := f.searches[term]
		f.mu.Unlock()
		if failed {
			w.WriteHeader(code)
			return
		}
		if hits == nil {
			hits = []hit{}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"search": hits})
	case "wbgetentities":
		id := q.Get("ids")
		f.mu.Lock()
		code, failed := f.failures[id]
		f.mu.Unlock()
		if failed {
			w.WriteHeader(code)
			return
		}
		if q.Get("props") == "labels" {
			f.serveLabel(w, id)
			return
		}
		f.serveEntity(w, id)
	default:
		w.WriteHeader(http.StatusBadRequest)
	}
}

func (f *fakeWikidata) serveLabel(w http.ResponseWriter, id string) {
	f.mu.Lock()
	counter, ok := f.labelHits[id]
	if !ok {
		counter = &atomic.Int32{}
		f.labelHits[id] = counter
	}
	label, known := f.labels[id]
	f.mu.Unlock()
	counter.Add(1)

	if !known {
		_, _ = fmt.Fprint(w, `{"entities":{}}`)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{
		"entities": map[string]any{id: map[string]any{"labels": map[string]any{"en": map[string]string{"value": label}}}},
	})
}

func (f *fakeWikidata) serveEntity(w http.ResponseWriter, id string) {
	f.mu.Lock()
	props, ok := f.claims[id]
	f.mu.Unlock()
	if !ok {
		_, _ = fmt.Fprint(w, `{"entities":{}}`)
		return
	}
	claims := map[string]any{}
	for p, ids := range props {
		stmts := make([]any, 0, len(ids))
		for _, v := range ids {
			stmts = append(stmts, map[string]any{
				"mainsnak": map[string]any{"datavalue": map[string]any{"value": map[string]string{"id": v}}},
			})
		}
		claims[p] = stmts
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"entities": map[string]any{id: map[string]any{"claims": claims}}})
}

func (f *fakeWikidata) fail(key string, code int) {
	f.mu.Lock()
	f.failures[key] = code
	f.mu.Unlock()
}

func (f *fakeWikidata) setDelay(d time.Duration) {
	f.mu.Lock()
	f.delay = d
	f.mu.Unlock()
}

func (f *fakeWikidata) lastUserAgent() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.userAgent
}

func (f *fakeWikidata) searched() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.terms...)
}

func (f *fakeWikidata) labelRequests(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.labelHits[id]; ok {
		return int(c.Load())
	}
	return 0
}

func newClient(srv *httptest.Server, opts ...wikidata.Option) *wikidata.Client {
	base := []wikidata.Option{
		wikidata.WithBaseURL(srv.URL),
		wikidata.WithLogger(logger.Nop()),
		wikidata.WithRateLimit(0, 0),
	}
	return wikidata.NewClient(append(base, opts...)...)
}

// messiFake wires a canonical footballer with sport and citizenship claims.
func messiFake() *fakeWikidata {
	f := newFake()
	f.searches["Messi"] = []hit{
		{ID: "Q1", Label: "Argentina vs Brazil", Description: "2018 football match"},
		{ID: "Q615", Label: "Lionel Messi", Description: "Argentine footballer (born 1987)"},
	}
	f.claims["Q615"] = map[string][]string{
		wikidata.PropSport:   {"Q2736"},
		wikidata.PropCitizen: {"Q414"},
	}
	f.labels["Q2736"] = "association football"
	f.labels["Q414"] = "Argentina"
	return f
}

func TestVariants(t *testing.T) {
	Convey("Given search term variants", t, func() {
		Convey("When the term has no doubled letters", func() {
			Convey("Then only the original is tried", func() {
				So(wikidata.Variants("Nadal"), ShouldResemble, []string{"Nadal"})
			})
		})

		Convey("When the term has one doubled letter", func() {
			Convey("Then the collapsed lower-case form follows the original", func() {
				So(wikidata.Variants("Cristiano Ronaldoo"), ShouldResemble, []string{"Cristiano Ronaldoo", "cristiano ronaldo"})
			})
		})

		Convey("When the term has several doubled letters", func() {
			Convey("Then each letter yields its own variant in alphabetical order", func() {
				So(wikidata.Variants("Mattee Berrettini"), ShouldResemble, []string{
					"Mattee Berrettini",
					"matte berrettini",
					"mattee berettini",
					"matee berretini",
				})
			})
		})

		Convey("When the doubled letter differs only in case", func() {
			Convey("Then it is still collapsed", func() {
				So(wikidata.Variants("AAron"), ShouldResemble, []string{"AAron", "aron"})
			})
		})
	})
}

func TestResolve(t *testing.T) {
	ctx := context.Background()

	Convey("Given a knowledge graph with a footballer and a match", t, func() {
		f := messiFake()
		srv := httptest.NewServer(f)
		Reset(srv.Close)
		r := wikidata.NewResolver(newClient(srv), wikidata.WithResolverLogger(logger.Nop()))

		Convey("When the surname is resolved", func() {
			e, ok := r.Resolve(ctx, "Messi")

			Convey("Then the footballer wins over the match and is expanded", func() {
				So(ok, ShouldBeTrue)
				So(e.MatchedName, ShouldEqual, "Lionel Messi")
				So(e.Sport, ShouldEqual, "Football")
				So(e.Country, ShouldEqual, "Argentina")
				So(e.Source, ShouldEqual, model.SourceWikidata)
			})

			Convey("Then the default User-Agent is sent", func() {
				So(f.lastUserAgent(), ShouldEqual, wikidata.DefaultUserAgent)
			})
		})

		Convey("When a blank name is resolved", func() {
			_, ok := r.Resolve(ctx, "  ")

			Convey("Then no request is made", func() {
				So(ok, ShouldBeFalse)
				So(f.searched(), ShouldBeEmpty)
			})
		})
	})

	Convey("Given an entity whose sport comes from its occupation", t, func() {
		f := newFake()
		f.searches["Shohei"] = []hit{{ID: "Q2", Label: "Shohei Ohtani", Description: "Japanese baseball player"}}
		f.claims["Q2"] = map[string][]string{
			wikidata.PropOccupation: {"Q10", "Q11"},
			wikidata.PropCitizen:    {"Q17"},
		}
		f.labels["Q10"] = "actor"
		f.labels["Q11"] = "baseball player"
		f.labels["Q17"] = "Japan"
		srv := httptest.NewServer(f)
		Reset(srv.Close)
		r := wikidata.NewResolver(newClient(srv))

		Convey("When it is resolved", func() {
			e, ok := r.Resolve(ctx, "Shohei")

			Convey("Then the first mappable occupation supplies the sport", func() {
				So(ok, ShouldBeTrue)
				So(e.Sport, ShouldEqual, "Baseball")
				So(e.Country, ShouldEqual, "Japan")
			})
		})
	})

	Convey("Given an entity with a sport label outside the synonym table", t, func() {
		f := newFake()
		f.searches["Tony Hawk"] = []hit{{ID: "Q3", Label: "Tony Hawk", Description: "American skateboarder"}}
		f.claims["Q3"] = map[string][]string{wikidata.PropSport: {"Q20"}}
		f.labels["Q20"] = "vert skating"
		srv := httptest.NewServer(f)
		Reset(srv.Close)
		r := wikidata.NewResolver(newClient(srv))

		Convey("When it is resolved", func() {
			e, ok := r.Resolve(ctx, "Tony Hawk")

			Convey("Then the sport is title-cased and the country is absent", func() {
				So(ok, ShouldBeTrue)
				So(e.Sport, ShouldEqual, "Vert Skating")
				So(e.HasCountry(), ShouldBeFalse)
			})
		})
	})

	Convey("Given an entity with no sport and no sporting occupation", t, func() {
		f := newFake()
		f.searches["Einstein"] = []hit{{ID: "Q937", Label: "Albert Einstein", Description: "German-born physicist"}}
		f.claims["Q937"] = map[string][]string{wikidata.PropOccupation: {"Q169470"}}
		f.labels["Q169470"] = "physicist"
		srv := httptest.NewServer(f)
		Reset(srv.Close)
		r := wikidata.NewResolver(newClient(srv))

		Convey("When it is resolved", func() {
			_, ok := r.Resolve(ctx, "Einstein")

			Convey("Then it is absent", func() {
				So(ok, ShouldBeFalse)
			})
		})
	})

	Convey("Given a misspelled name only found without the doubled letter", t, func() {
		f := newFake()
		f.searches["Messsi"] = []hit{{ID: "Q9", Label: "Messsi Cup", Description: "football tournament"}}
		f.searches["messi"] = []hit{{ID: "Q615", Label: "Lionel Messi", Description: "Argentine footballer"}}
		f.claims["Q615"] = map[string][]string{wikidata.PropSport: {"Q2736"}}
		f.labels["Q2736"] = "association football"
		srv := httptest.NewServer(f)
		Reset(srv.Close)
		r := wikidata.NewResolver(newClient(srv))

		Convey("When it is resolved", func() {
			e, ok := r.Resolve(ctx, "Messsi")

			Convey("Then variants are tried until one yields a winner", func() {
				So(ok, ShouldBeTrue)
				So(e.MatchedName, ShouldEqual, "Lionel Messi")
				So(f.searched(), ShouldResemble, []string{"Messsi", "messi"})
			})
		})
	})

	Convey("Given a search hit without a label", t, func() {
		f := newFake()
		f.searches["Pele"] = []hit{{ID: "Q12897", Description: "Brazilian footballer"}}
		f.claims["Q12897"] = map[string][]string{wikidata.PropSport: {"Q2736"}, wikidata.PropCitizen: {"Q155"}}
		f.labels["Q2736"] = "association football"
		f.labels["Q155"] = "Brazil"
		srv := httptest.NewServer(f)
		Reset(srv.Close)
		r := wikidata.NewResolver(newClient(srv))

		Convey("When it is resolved", func() {
			e, ok := r.Resolve(ctx, "Pele")

			Convey("Then the search term becomes the matched name", func() {
				So(ok, ShouldBeTrue)
				So(e.MatchedName, ShouldEqual, "Pele")
			})
		})
	})

	Convey("Given custom disambiguation rules", t, func() {
		f := messiFake()
		srv := httptest.NewServer(f)
		Reset(srv.Close)
		f.claims["Q1"] = map[string][]string{}
		rules := disambiguate.Rules{{Word: "footballer", Class: disambiguate.Reject}}
		r := wikidata.NewResolver(newClient(srv), wikidata.WithRules(rules))

		Convey("When the footballer is rejected by configuration", func() {
			_, ok := r.Resolve(ctx, "Messi")

			Convey("Then the match is chosen as last resort and has no sport", func() {
				So(ok, ShouldBeFalse)
			})
		})
	})
}

func TestFailures(t *testing.T) {
	ctx := context.Background()

	Convey("Given a knowledge graph that fails at each stage", t, func() {
		f := messiFake()
		srv := httptest.NewServer(f)
		Reset(srv.Close)
		r := wikidata.NewResolver(newClient(srv))

		Convey("When search returns a server error", func() {
			f.fail("Messi", http.StatusServiceUnavailable)
			_, ok := r.Resolve(ctx, "Messi")

			Convey("Then the lookup is absent", func() {
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When the entity fetch returns a server error", func() {
			f.fail("Q615", http.StatusInternalServerError)
			_, ok := r.Resolve(ctx, "Messi")

			Convey("Then the lookup is absent", func() {
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When the country label cannot be fetched", func() {
			f.fail("Q414", http.StatusBadGateway)
			e, ok := r.Resolve(ctx, "Messi")

			Convey("Then the athlete resolves without a country", func() {
				So(ok, ShouldBeTrue)
				So(e.Sport, ShouldEqual, "Football")
				So(e.HasCountry(), ShouldBeFalse)
			})
		})
	})

	Convey("Given a server that returns malformed JSON", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = fmt.Fprint(w, `{"search": [`)
		}))
		Reset(srv.Close)
		c := newClient(srv)

		Convey("Then search reports no data", func() {
			_, ok := c.Search(ctx, "Messi")
			So(ok, ShouldBeFalse)
		})
	})

	Convey("Given a server slower than the request timeout", t, func() {
		f := messiFake()
		f.delay = 200 * time.Millisecond
		srv := httptest.NewServer(f)
		Reset(srv.Close)
		c := newClient(srv, wikidata.WithTimeouts(50*time.Millisecond, 50*time.Millisecond))

		Convey("Then the search times out as no data", func() {
			_, ok := c.Search(ctx, "Messi")
			So(ok, ShouldBeFalse)
		})
	})

	Convey("Given an unreachable endpoint", t, func() {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()
		r := wikidata.NewResolver(wikidata.NewClient(
			wikidata.WithBaseURL(url),
			wikidata.WithLogger(logger.Nop()),
			wikidata.WithRateLimit(0, 0),
		))

		Convey("Then resolution is absent", func() {
			_, ok := r.Resolve(ctx, "Messi")
			So(ok, ShouldBeFalse)
		})
	})
}

func TestLabelCache(t *testing.T) {
	ctx := context.Background()

	Convey("Given a client with a shared label cache", t, func() {
		f := messiFake()
		srv := httptest.NewServer(f)
		Reset(srv.Close)
		cache := wikidata.NewLabelCache()
		c := newClient(srv, wikidata.WithLabelCache(cache), wikidata.WithUserAgent("tests/1.0"))

		Convey("When the same label is requested twice", func() {
			first, ok1 := c.Label(ctx, "Q2736")
			second, ok2 := c.Label(ctx, "Q2736")

			Convey("Then only one request is made", func() {
				So(ok1, ShouldBeTrue)
				So(ok2, ShouldBeTrue)
				So(first, ShouldEqual, "association football")
				So(second, ShouldEqual, first)
				So(f.labelRequests("Q2736"), ShouldEqual, 1)
				So(cache.Len(), ShouldEqual, 1)
				So(f.lastUserAgent(), ShouldEqual, "tests/1.0")
			})
		})

		Convey("When a label is requested concurrently", func() {
			f.setDelay(20 * time.Millisecond)
			var wg sync.WaitGroup
			results := make([]string, 8)
			for i := range results {
				wg.Add(1)
				go func() {
					defer wg.Done()
					results[i], _ = c.Label(ctx, "Q414")
				}()
			}
			wg.Wait()

			Convey("Then every caller gets the label", func() {
				for _, r := range results {
					So(r, ShouldEqual, "Argentina")
				}
				So(f.labelRequests("Q414"), ShouldBeBetweenOrEqual, 1, len(results))
				So(cache.Len(), ShouldEqual, 1)
			})
		})

		Convey("When an unknown label is requested", func() {
			_, ok := c.Label(ctx, "Q404")
			_, ok2 := c.Label(ctx, "Q404")

			Convey("Then nothing is cached and the next call retries", func() {
				So(ok, ShouldBeFalse)
				So(ok2, ShouldBeFalse)
				So(cache.Len(), ShouldEqual, 0)
				So(f.labelRequests("Q404"), ShouldEqual, 2)
			})
		})

		Convey("When a resolver shares the client", func() {
			r := wikidata.NewResolver(c)
			_, ok := r.Resolve(ctx, "Messi")
			_, ok2 := r.Resolve(ctx, "Messi")

			Convey("Then labels are fetched once across lookups", func() {
				So(ok, ShouldBeTrue)
				So(ok2, ShouldBeTrue)
				So(f.labelRequests("Q2736"), ShouldEqual, 1)
				So(f.labelRequests("Q414"), ShouldEqual, 1)
				So(strings.Join(f.searched(), ","), ShouldEqual, "Messi,Messi")
			})
		})
	})

	Convey("Given a bare label cache", t, func() {
		lc := wikidata.NewLabelCache()

		Convey("Then empty labels are not stored", func() {
			lc.Put("Q1", "")
			_, ok := lc.Get("Q1")
			So(ok, ShouldBeFalse)
			lc.Put("Q1", "x")
			v, ok := lc.Get("Q1")
			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, "x")
		})
	})
}

func TestRateLimit(t *testing.T) {
	Convey("Given a client limited to one request per second without burst", t, func() {
		f := messiFake()
		srv := httptest.NewServer(f)
		Reset(srv.Close)
		c := wikidata.NewClient(
			wikidata.WithBaseURL(srv.URL),
			wikidata.WithLogger(logger.Nop()),
			wikidata.WithRateLimit(1, 1),
		)

		Convey("When the context ends while waiting for a token", func() {
			_, ok := c.Search(context.Background(), "Messi")
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
			defer cancel()
			_, ok2 := c.Search(ctx, "Messi")

			Convey("Then the first call succeeds and the second reports no data", func() {
				So(ok, ShouldBeTrue)
				So(ok2, ShouldBeFalse)
				So(f.searched(), ShouldHaveLength, 1)
			})
		})
	})
}
