package model

// RawEntry is one log line as returned by the firewall log API.
type RawEntry struct {
	Message  string `json:"message"`
	Time     string `json:"time"`
	Timezone string `json:"timezone"`
}

// Page is the JSON body of a log filter response. A missing content list
// decodes to an empty page.
type Page struct {
	Content []RawEntry `json:"content"`
}

// PageResult is the tagged result of fetching one page from one appliance.
// Err is nil on success, in which case StatusCode is a 2xx code and Page holds
// the decoded body.
type PageResult struct {
	StatusCode int
	Page       Page
	Err        error
}

// OK reports whether the fetch succeeded.
func (r PageResult) OK() bool { return r.Err == nil }
