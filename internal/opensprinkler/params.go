package opensprinkler

import (
	"net/url"
	"strconv"
	"strings"
)

// Param is a single query parameter sent to the controller.
type Param struct {
	Key   string
	Value string
}

// Params is an ordered list of query parameters. Order is preserved on the
// wire after the injected credential.
type Params []Param

// Set replaces the value of key, or appends it when absent.
func (p *Params) Set(key, value string) {
	for i := range *p {
		if (*p)[i].Key == key {
			(*p)[i].Value = value
			return
		}
	}
	*p = append(*p, Param{Key: key, Value: value})
}

// SetInt sets an integer parameter.
func (p *Params) SetInt(key string, v int) {
	p.Set(key, strconv.Itoa(v))
}

// SetOptInt sets key only when v is non-nil.
func (p *Params) SetOptInt(key string, v *int) {
	if v != nil {
		p.SetInt(key, *v)
	}
}

// SetOptString sets key only when v is non-empty.
func (p *Params) SetOptString(key, v string) {
	if v != "" {
		p.Set(key, v)
	}
}

// Get returns the value of key.
func (p Params) Get(key string) (string, bool) {
	for _, kv := range p {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return "", false
}

// Keys returns the parameter names in order.
func (p Params) Keys() []string {
	keys := make([]string, len(p))
	for i, kv := range p {
		keys[i] = kv.Key
	}
	return keys
}

// Encode renders the parameters as a query string in list order.
func (p Params) Encode() string {
	var b strings.Builder
	for i, kv := range p {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(kv.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(kv.Value))
	}
	return b.String()
}
