// Package catalog defines the fixed list of compliance parameters audited by
// the scan engine. The 28 entries are a versioned contract: stored reports
// reference parameters by ID, so IDs must stay dense, unique and stable.
// Adding or removing an entry is a breaking change for every consumer.
package catalog

import "sort"

// Item is a single compliance parameter.
type Item struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

// MinID and MaxID bound the catalog ID range.
const (
	MinID = 1
	MaxID = 28
)

var items = []Item{
	{1, "Open Network Ports"},
	{2, "HTTP to HTTPS Redirection"},
	{3, "HTTPS Operationality"},
	{4, "Server Version Disclosure"},
	{5, "Software Version Disclosure"},
	{6, "E-Tag Info Leakage"},
	{7, "X-XSS-Protection"},
	{8, "X-Frame-Options"},
	{9, "HSTS Enabled"},
	{10, "Content-Security-Policy"},
	{11, "Cookie Security Flags"},
	{12, "Cookie SameSite Attribute"},
	{13, "Cache-Control Security"},
	{14, "Insecure HTTP Methods"},
	{15, "Management Interface Exposure"},
	{16, "Deprecated TLS/SSL Versions"},
	{17, "Weak Cipher Support"},
	{18, "POODLE Attack Protection"},
	{19, "Logjam Attack Protection"},
	{20, "Heartbleed Vulnerability"},
	{21, "CRIME Attack Protection"},
	{22, "CSS Injection Protection"},
	{23, "Anonymous Cipher Support"},
	{24, "FREAK Attack Protection"},
	{25, "DROWN Attack Protection"},
	{26, "Forward Secrecy Support"},
	{27, "Legacy HTTP/1.0 Support"},
	{28, "DNS CAA Record Status"},
}

var byID = func() map[int]Item {
	m := make(map[int]Item, len(items))
	for _, it := range items {
		m[it.ID] = it
	}
	return m
}()

// Items returns the full catalog ordered by ID. The returned slice is a copy;
// callers may not mutate the catalog.
func Items() []Item {
	out := make([]Item, len(items))
	copy(out, items)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Title returns the human-readable title for a catalog ID, or the empty
// string when the ID is not part of the catalog.
func Title(id int) string {
	return byID[id].Title
}

// Contains reports whether id is a valid catalog ID.
func Contains(id int) bool {
	_, ok := byID[id]
	return ok
}
