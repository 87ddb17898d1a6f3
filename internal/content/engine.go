// Package content renders outreach copy for a (channel, audience, program)
// triple. Templates use {field} placeholders; every placeholder must resolve
// or rendering fails, so a recipient never sees a literal {name}.
package content

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/osteele/liquid"
	"github.com/shopspring/decimal"

	"github.com/xavierca1/sitm-outreach/internal/entity"
)

var placeholderPattern = regexp.MustCompile(`\{([a-z][a-z0-9_]*)\}`)

// Key identifies exactly one template. There is no fallback between keys.
type Key struct {
	Channel  entity.Channel
	Audience entity.Audience
	Program  string
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s/%s", k.Channel, k.Audience, k.Program)
}

// Message is rendered copy. Subject is empty for channels without one.
type Message struct {
	Subject string `json:"subject,omitempty"`
	Body    string `json:"body"`
}

// PlaceholderError reports the first placeholder that had no value.
type PlaceholderError struct {
	Key   Key
	Field string
}

func (e *PlaceholderError) Error() string {
	return fmt.Sprintf("missing placeholder {%s} in template %s", e.Field, e.Key)
}

func (e *PlaceholderError) Unwrap() error { return entity.ErrMissingPlaceholder }

type compiledTemplate struct {
	key     Key
	fields  []string
	subject *liquid.Template
	body    *liquid.Template
}

type Engine struct {
	catalog   *Catalog
	sender    map[string]string
	templates map[Key]*compiledTemplate
}

// NewEngine compiles every catalog template. sender overrides the catalog's
// sender fields (company_name, agent_name, ...).
func NewEngine(catalog *Catalog, sender map[string]string) (*Engine, error) {
	e := &Engine{
		catalog:   catalog,
		sender:    make(map[string]string),
		templates: make(map[Key]*compiledTemplate),
	}
	for k, v := range catalog.Sender {
		e.sender[k] = v
	}
	for k, v := range sender {
		if v != "" {
			e.sender[k] = v
		}
	}

	le := liquid.NewEngine()
	for i, ts := range catalog.Templates {
		for _, program := range ts.Programs {
			key := Key{Channel: ts.Channel, Audience: ts.Audience, Program: program}
			if _, dup := e.templates[key]; dup {
				return nil, fmt.Errorf("template #%d: duplicate key %s", i, key)
			}
			ct, err := compile(le, key, ts)
			if err != nil {
				return nil, fmt.Errorf("template #%d (%s): %w", i, key, err)
			}
			e.templates[key] = ct
		}
	}
	return e, nil
}

func compile(le *liquid.Engine, key Key, ts TemplateSpec) (*compiledTemplate, error) {
	ct := &compiledTemplate{key: key}
	seen := make(map[string]bool)

	for _, src := range []string{ts.Subject, ts.Body} {
		if strings.Contains(src, "{{") || strings.Contains(src, "{%") {
			return nil, fmt.Errorf("template uses reserved delimiters")
		}
		if rest := placeholderPattern.ReplaceAllString(src, ""); strings.ContainsAny(rest, "{}") {
			return nil, fmt.Errorf("malformed placeholder %q: use lowercase {field} names", strayBrace(rest))
		}
		for _, m := range placeholderPattern.FindAllStringSubmatch(src, -1) {
			if !seen[m[1]] {
				seen[m[1]] = true
				ct.fields = append(ct.fields, m[1])
			}
		}
	}

	body, err := le.ParseString(toLiquid(ts.Body))
	if err != nil {
		return nil, fmt.Errorf("body: %w", err)
	}
	ct.body = body

	if ts.Subject != "" {
		subject, err := le.ParseString(toLiquid(ts.Subject))
		if err != nil {
			return nil, fmt.Errorf("subject: %w", err)
		}
		ct.subject = subject
	}
	return ct, nil
}

// strayBrace returns the text around the first brace left after removing the
// valid placeholders.
func strayBrace(rest string) string {
	i := strings.IndexAny(rest, "{}")
	end := i + 1
	if rest[i] == '{' {
		if j := strings.IndexByte(rest[i:], '}'); j > 0 {
			end = i + j + 1
		}
	}
	return rest[i:end]
}

// toLiquid rewrites {field} into a liquid output tag.
func toLiquid(src string) string {
	return placeholderPattern.ReplaceAllString(src, "{{ $1 }}")
}

// Render returns the body of the template for the given key.
func (e *Engine) Render(channel entity.Channel, audience entity.Audience, program string, ctx map[string]string) (string, error) {
	msg, err := e.RenderMessage(channel, audience, program, ctx)
	if err != nil {
		return "", err
	}
	return msg.Body, nil
}

// RenderMessage renders subject and body. Values in ctx take precedence over
// program fields, which take precedence over sender fields. Empty values count
// as missing.
func (e *Engine) RenderMessage(channel entity.Channel, audience entity.Audience, program string, ctx map[string]string) (Message, error) {
	ct, prog, err := e.lookup(channel, audience, program)
	if err != nil {
		return Message{}, err
	}

	bindings := make(map[string]interface{}, len(ct.fields))
	values := e.values(prog, ctx)
	for _, field := range ct.fields {
		v := values[field]
		if v == "" {
			return Message{}, &PlaceholderError{Key: ct.key, Field: field}
		}
		bindings[field] = v
	}

	var msg Message
	body, rerr := ct.body.RenderString(bindings)
	if rerr != nil {
		return Message{}, fmt.Errorf("render %s: %w", ct.key, rerr)
	}
	msg.Body = body

	if ct.subject != nil {
		subject, rerr := ct.subject.RenderString(bindings)
		if rerr != nil {
			return Message{}, fmt.Errorf("render subject %s: %w", ct.key, rerr)
		}
		msg.Subject = subject
	}
	return msg, nil
}

// Placeholders lists the fields a template needs, in order of first use.
func (e *Engine) Placeholders(channel entity.Channel, audience entity.Audience, program string) ([]string, error) {
	ct, _, err := e.lookup(channel, audience, program)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(ct.fields))
	copy(out, ct.fields)
	return out, nil
}

// HasTemplate reports whether an exact template exists for the key.
func (e *Engine) HasTemplate(channel entity.Channel, audience entity.Audience, program string) bool {
	_, ok := e.templates[Key{Channel: channel, Audience: audience, Program: program}]
	return ok
}

func (e *Engine) Program(key string) (entity.Program, bool) { return e.catalog.Program(key) }

func (e *Engine) ProgramKeys() []string { return e.catalog.ProgramKeys() }

func (e *Engine) lookup(channel entity.Channel, audience entity.Audience, program string) (*compiledTemplate, entity.Program, error) {
	if !channel.Valid() {
		return nil, entity.Program{}, fmt.Errorf("%w: %q", entity.ErrUnsupportedChannel, channel)
	}
	if !audience.Valid() {
		return nil, entity.Program{}, fmt.Errorf("%w: %q", entity.ErrUnsupportedAudience, audience)
	}
	prog, ok := e.catalog.Program(program)
	if !ok {
		return nil, entity.Program{}, fmt.Errorf("%w: %q", entity.ErrUnknownProgram, program)
	}
	key := Key{Channel: channel, Audience: audience, Program: program}
	ct, ok := e.templates[key]
	if !ok {
		return nil, entity.Program{}, fmt.Errorf("%w: %s", entity.ErrTemplateNotFound, key)
	}
	return ct, prog, nil
}

func (e *Engine) values(p entity.Program, ctx map[string]string) map[string]string {
	out := make(map[string]string, len(e.sender)+len(ctx)+7)
	for k, v := range e.sender {
		out[k] = v
	}
	out["program"] = p.Key
	out["program_name"] = p.Name
	out["price"] = FormatMoney(p.Price)
	out["duration"] = p.Duration
	out["placement_rate"] = formatRate(p.PlacementRate)
	out["cohort_start"] = p.CohortStart
	if p.AvgSalaryK > 0 {
		out["salary"] = strconv.Itoa(p.AvgSalaryK)
	}
	for k, v := range ctx {
		out[k] = v
	}
	return out
}

// FormatMoney renders 3500 as "$3,500" and 3500.5 as "$3,500.50".
func FormatMoney(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	d = d.Round(2)
	whole := d.Truncate(0)
	cents := d.Sub(whole).Shift(2).IntPart()

	digits := whole.String()
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := sign + "$" + b.String()
	if cents != 0 {
		out += fmt.Sprintf(".%02d", cents)
	}
	return out
}

func formatRate(r float64) string {
	if r <= 0 {
		return ""
	}
	return strconv.FormatFloat(math.Round(r*1000)/10, 'f', -1, 64) + "%"
}
