package model

// Record is a decoded log line. It is implemented only by ThreatRecord and
// EventRecord.
type Record interface {
	Kind() Category
	isRecord()
}

// ThreatRecord is one decoded line from the firewall threat log.
type ThreatRecord struct {
	Time        string   `json:"time"`     // time the appliance received the log
	Zone        string   `json:"timezone"` // offset from UTC as reported
	Severity    Severity `json:"severity"`
	Threat      string   `json:"threat"`
	Proto       string   `json:"proto"`
	Src         string   `json:"src"`
	Dst         string   `json:"dst"`
	Target      string   `json:"target"` // resolved FQDN, often empty
	Description string   `json:"description"`
	Username    string   `json:"username"`
	Category    string   `json:"category"`
}

// Kind implements Record.
func (ThreatRecord) Kind() Category { return Threat }
func (ThreatRecord) isRecord()      {}

// EventRecord is one decoded line from the box event log.
type EventRecord struct {
	Time        string `json:"time"`
	Zone        string `json:"timezone"`
	Action      Action `json:"action"`
	LayerName   string `json:"layer_name"`
	ClassName   string `json:"class_name"`
	EventID     string `json:"event_id"`
	EventName   string `json:"event_name"`
	Description string `json:"description"`
	Message     string `json:"message"` // populated for INSERT only
}

// Kind implements Record.
func (EventRecord) Kind() Category { return Event }
func (EventRecord) isRecord()      {}
