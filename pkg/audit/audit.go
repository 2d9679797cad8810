package audit

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"
)

// Structured data ids. 32473 is the documentation enterprise number from
// RFC 5612.
const (
	PEN         = 32473
	SDIDAuth    = "auth@32473"
	SDIDSubject = "subject@32473"
	SDIDAction  = "action@32473"
	SDIDClient  = "client@32473"
)

// Syslog facilities used by gateway events.
const (
	FacilityUser     = 1  // preference changes
	FacilityAuth     = 4  // token checks
	FacilityAuthPriv = 10 // grants and credentials
)

// AppName is the RFC5424 APP-NAME of every audit record.
const AppName = "gateway-admin"

// Severity is an RFC5424 severity.
type Severity int

const (
	SeverityEmergency Severity = iota
	SeverityAlert
	SeverityCritical
	SeverityError
	SeverityWarning
	SeverityNotice
	SeverityInfo
	SeverityDebug
)

// Event is anything that can be rendered as an audit record.
type Event interface {
	MessageID() string
	Message() string
	Severity() Severity
	Facility() int
	StructuredData() map[string]map[string]string
}

// Logger writes events as RFC5424 lines:
//
//	<PRI>1 TIMESTAMP HOSTNAME APP-NAME PROCID MSGID [SD] MSG
type Logger struct {
	mu     sync.Mutex
	writer io.Writer
	host   string
	procID string
}

// NewLogger returns a Logger writing to stdout.
func NewLogger() *Logger {
	host, _ := os.Hostname()
	if host == "" {
		host = "-"
	}
	return &Logger{
		writer: os.Stdout,
		host:   host,
		procID: strconv.Itoa(os.Getpid()),
	}
}

// SetWriter redirects output, e.g. to a file or a test buffer.
func (l *Logger) SetWriter(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.writer = w
}

// Format renders event as it would be written at time at.
func (l *Logger) Format(event Event, at time.Time) string {
	sd := formatStructuredData(event.StructuredData())
	if sd == "" {
		sd = "-"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "<%d>1 %s %s %s %s %s %s %s\n",
		event.Facility()*8+int(event.Severity()),
		at.UTC().Format("2006-01-02T15:04:05.000Z"),
		l.host,
		AppName,
		l.procID,
		event.MessageID(),
		sd,
		event.Message(),
	)
	return b.String()
}

// Log writes event.
func (l *Logger) Log(event Event) {
	line := l.Format(event, time.Now())

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = io.WriteString(l.writer, line)
}

// formatStructuredData renders [sdid key="value" ...] blocks in a stable
// order.
func formatStructuredData(sd map[string]map[string]string) string {
	var b strings.Builder
	for _, sdid := range sortedKeys(sd) {
		b.WriteString("[" + sdid)
		params := sd[sdid]
		for _, key := range sortedKeys(params) {
			b.WriteString(" " + key + "=" + escapeSDValue(params[key]))
		}
		b.WriteString("]")
	}
	return b.String()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var sdEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, `]`, `\]`)

// escapeSDValue quotes a PARAM-VALUE (RFC5424 section 6.3.3).
func escapeSDValue(value string) string {
	return `"` + sdEscaper.Replace(value) + `"`
}

// DefaultLogger receives every event passed to Log.
var DefaultLogger = NewLogger()

var (
	enabled atomic.Bool

	storeOnce    sync.Once
	defaultStore *Store
)

func init() {
	env := strings.ToLower(strings.TrimSpace(os.Getenv("GATEWAY_AUDIT_ENABLED")))
	enabled.Store(env != "false" && env != "0" && env != "no")
}

// IsEnabled reports whether Log records events. It is on unless
// GATEWAY_AUDIT_ENABLED is false, 0 or no.
func IsEnabled() bool {
	return enabled.Load()
}

// SetEnabled turns audit logging on or off.
func SetEnabled(on bool) {
	enabled.Store(on)
}

// Log records event on DefaultLogger and, when GATEWAY_AUDIT_DATABASE_URL
// is set, in the audit database.
func Log(event Event) {
	if !IsEnabled() {
		return
	}
	DefaultLogger.Log(event)

	storeOnce.Do(func() {
		var err error
		if defaultStore, err = NewStore(); err != nil {
			log.WithError(err).Error("audit: database disabled")
		}
	})
	if defaultStore == nil {
		return
	}
	if err := defaultStore.Save(event); err != nil {
		log.WithError(err).WithField("msgid", event.MessageID()).Error("audit: failed to save event")
	}
}
