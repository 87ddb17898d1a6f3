// Package identity generates synthetic people, companies and contact data
// from fixed vocabularies. Values are noisy on purpose: nothing here is unique.
package identity

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"
)

var (
	firstNames   = []string{"Alex", "Jamie", "Taylor", "Casey", "Morgan", "Jordan", "Riley", "Avery", "Quinn", "Skyler"}
	lastNames    = []string{"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Okafor", "Müller", "Adeyemi", "Nguyen"}
	companyRoots = []string{"Tech", "Solutions", "Global", "Innovations", "Data", "Cloud", "Systems", "Digital"}
	companyTypes = []string{"Inc", "LLC", "Corp"}
	jobs         = []string{"Cloud Engineer", "DevOps", "DBA", "Solutions Architect"}
	cities       = []string{"Atlanta", "New York", "Chicago", "Austin", "London", "Berlin"}
	universities = []string{"Georgia Tech", "NYU", "Stanford", "MIT", "University of Lagos"}
	countries    = []string{"US", "Canada", "UK", "Germany", "France", "Nigeria", "South Africa"}
)

// Provider draws random identities. It is safe for concurrent use.
type Provider struct {
	mu  sync.Mutex
	rnd *rand.Rand
	now func() time.Time
}

// New returns a provider seeded from the clock.
func New() *Provider {
	return NewSeeded(uint64(time.Now().UnixNano()))
}

// NewSeeded returns a provider whose sequence is reproducible for a given seed.
func NewSeeded(seed uint64) *Provider {
	return &Provider{
		rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		now: time.Now,
	}
}

// WithClock fixes "now" for Date. Used by tests.
func (p *Provider) WithClock(now func() time.Time) *Provider {
	p.now = now
	return p
}

func (p *Provider) Name() string {
	return p.pick(firstNames) + " " + p.pick(lastNames)
}

// Email builds an address from name, or from a fresh random name when empty.
// The local part only keeps ASCII letters and digits so the result always parses.
func (p *Provider) Email(name string) string {
	if name == "" {
		name = p.Name()
	}
	return fmt.Sprintf("%s%d@example.com", emailLocal(name), p.IntRange(10, 99))
}

func (p *Provider) Phone() string {
	return fmt.Sprintf("%d-%d-%d", p.IntRange(200, 999), p.IntRange(200, 999), p.IntRange(1000, 9999))
}

func (p *Provider) Company() string {
	return p.pick(companyRoots) + " " + p.pick(companyTypes)
}

// Date returns a calendar date (midnight, local zone) between now-maxDaysAgo and now.
func (p *Provider) Date(maxDaysAgo int) time.Time {
	if maxDaysAgo < 0 {
		maxDaysAgo = 0
	}
	now := p.now()
	d := now.AddDate(0, 0, -p.IntRange(0, maxDaysAgo))
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
}

func (p *Provider) City() string       { return p.pick(cities) }
func (p *Provider) Country() string    { return p.pick(countries) }
func (p *Provider) University() string { return p.pick(universities) }
func (p *Provider) Job() string        { return p.pick(jobs) }

// Pick returns a uniformly chosen element of options, or "" when empty.
func (p *Provider) Pick(options []string) string {
	if len(options) == 0 {
		return ""
	}
	return p.pick(options)
}

// IntRange returns an int in [lo, hi]. lo > hi returns lo.
func (p *Provider) IntRange(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return lo + p.rnd.IntN(hi-lo+1)
}

// Float returns a value in [0, 1).
func (p *Provider) Float() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rnd.Float64()
}

func (p *Provider) pick(options []string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return options[p.rnd.IntN(len(options))]
}

func emailLocal(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "contact"
	}
	return b.String()
}
