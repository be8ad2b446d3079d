package audit

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/staybook/audit-service/internal/metrics"
	"github.com/staybook/audit-service/internal/models"
)

// Validation errors returned by Log before anything is hashed or persisted.
// These are the only errors Log ever returns; refusing to chain a malformed
// entry protects the chain, everything downstream is best-effort.
var (
	ErrInvalidEventType = errors.New("audit: missing or unknown event type")
	ErrMissingResource  = errors.New("audit: resource type is required")
	ErrInvalidSeverity  = errors.New("audit: unknown severity")
	ErrInvalidCategory  = errors.New("audit: unknown category")
)

// DefaultWriteTimeout bounds a single append, persistence included.
const DefaultWriteTimeout = 5 * time.Second

// Options carries the optional classification of a logged event.
type Options struct {
	Severity   models.Severity
	Category   models.Category
	Actor      string
	Reason     string
	Metadata   map[string]any
	Compliance models.ComplianceFlags
}

type appendRequest struct {
	ctx   context.Context
	entry *models.AuditLogEntry
	reply chan appendResult
}

type appendResult struct {
	entry *models.AuditLogEntry
	err   error
}

// Recorder is the audit writer. A single appender goroutine owns the chain
// tail, so "read the tail, write an entry referencing it" is serialized and
// concurrent callers can never fork the chain.
//
// Log is best-effort by contract: it returns an error only for caller-side
// validation failures. Infrastructure failures (timeout, insert error) are
// swallowed, logged on the secondary failure channel, and counted, so the
// business operation that triggered the event is never aborted by its audit
// trail.
type Recorder struct {
	store    EntryStore
	alerts   Dispatcher
	timeout  time.Duration
	requests chan appendRequest
	quit     chan struct{}
	done     chan struct{}
	stop     sync.Once
	alertWG  sync.WaitGroup
}

// NewRecorder loads the current chain tail from the store and starts the
// appender goroutine. Call Close to drain and stop it.
func NewRecorder(ctx context.Context, store EntryStore, alerts Dispatcher, timeout time.Duration) (*Recorder, error) {
	if timeout <= 0 {
		timeout = DefaultWriteTimeout
	}
	last, err := store.LastEntry(ctx)
	if err != nil {
		return nil, err
	}
	tail := ""
	if last != nil {
		tail = last.Hash
	}
	r := &Recorder{
		store:    store,
		alerts:   alerts,
		timeout:  timeout,
		requests: make(chan appendRequest, 64),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go r.run(tail)
	return r, nil
}

// Close stops the appender after the queued requests are handled. Safe to
// call more than once.
func (r *Recorder) Close() {
	r.stop.Do(func() { close(r.quit) })
	<-r.done
}

func (r *Recorder) run(tail string) {
	defer close(r.done)
	defer r.alertWG.Wait()
	for {
		select {
		case req := <-r.requests:
			tail = r.append(req, tail)
		case <-r.quit:
			// Drain anything already queued so callers are not left waiting.
			for {
				select {
				case req := <-r.requests:
					tail = r.append(req, tail)
				default:
					return
				}
			}
		}
	}
}

// append assigns the entry its place in the chain, persists it, and returns
// the new tail hash (or the old one if the insert failed).
func (r *Recorder) append(req appendRequest, tail string) string {
	e := req.entry
	// Truncated to microseconds: timestamptz keeps no finer precision, and
	// the stored timestamp must reproduce the hashed one exactly.
	e.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)
	e.PrevHash = tail
	if tail == "" {
		// Genesis entry: stamp the chain version so the canonical hash
		// schema in force is recorded alongside the first link. The stamp
		// goes on a copy; the metadata map still belongs to the caller.
		md := make(map[string]any, len(e.Metadata)+1)
		for k, v := range e.Metadata {
			md[k] = v
		}
		md["chain_version"] = ChainVersion
		e.Metadata = md
	}

	hash, err := ComputeHash(e)
	if err != nil {
		req.reply <- appendResult{err: err}
		return tail
	}
	e.Hash = hash

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	if err := r.store.Insert(ctx, e); err != nil {
		req.reply <- appendResult{err: err}
		return tail
	}

	metrics.IncAuditEntry(string(e.Category), string(e.Severity))
	req.reply <- appendResult{entry: e}
	if e.Severity == models.SeverityCritical && r.alerts != nil {
		// Alerting is fire-and-forget: it runs off the appender loop with
		// its own deadline, so a slow notification store or stream cannot
		// stall queued writers. Close waits for in-flight dispatches.
		snapshot := *e
		r.alertWG.Add(1)
		go r.dispatchAlert(&snapshot)
	}
	return e.Hash
}

func (r *Recorder) dispatchAlert(e *models.AuditLogEntry) {
	defer r.alertWG.Done()
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	r.alerts.Dispatch(ctx, e)
}

// Log records one audit event and returns the persisted entry.
//
// The returned error is non-nil only when the caller's input is invalid
// (unknown event type, missing resource, bad enum); nothing has been
// persisted in that case. When persistence itself fails, Log returns
// (nil, nil) after routing the failure to slog and the
// audit_write_failures_total counter.
func (r *Recorder) Log(ctx context.Context, eventType models.EventType, resource, resourceID string, details map[string]any, opts Options) (*models.AuditLogEntry, error) {
	if !eventType.Valid() {
		return nil, ErrInvalidEventType
	}
	if resource == "" {
		return nil, ErrMissingResource
	}
	if opts.Severity == "" {
		opts.Severity = models.SeverityInfo
	}
	if !opts.Severity.Valid() {
		return nil, ErrInvalidSeverity
	}
	if opts.Category == "" {
		opts.Category = defaultCategory(eventType)
	}
	if !opts.Category.Valid() {
		return nil, ErrInvalidCategory
	}

	if opts.Reason != "" {
		if details == nil {
			details = map[string]any{}
		}
		details["reason"] = opts.Reason
	}

	entry := &models.AuditLogEntry{
		ID:         uuid.NewString(),
		Category:   opts.Category,
		EventType:  eventType,
		Severity:   opts.Severity,
		Actor:      opts.Actor,
		Context:    ExtractRequestContext(ctx),
		Resource:   resource,
		ResourceID: resourceID,
		Details:    details,
		Metadata:   opts.Metadata,
		Compliance: opts.Compliance,
	}

	req := appendRequest{ctx: ctx, entry: entry, reply: make(chan appendResult, 1)}

	sendCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	select {
	case r.requests <- req:
	case <-sendCtx.Done():
		r.reportFailure(entry, sendCtx.Err(), "enqueue")
		return nil, nil
	}

	select {
	case res := <-req.reply:
		if res.err != nil {
			r.reportFailure(entry, res.err, "persist")
			return nil, nil
		}
		return res.entry, nil
	case <-sendCtx.Done():
		// The appender will still process the request; only the caller
		// stops waiting.
		r.reportFailure(entry, sendCtx.Err(), "wait")
		return nil, nil
	}
}

// reportFailure is the secondary failure channel: the event that could not be
// chained is logged in full so repeated audit failures stay observable even
// though the caller never sees them.
func (r *Recorder) reportFailure(e *models.AuditLogEntry, err error, stage string) {
	metrics.IncAuditWriteFailure(stage)
	slog.Error("audit write failed",
		"stage", stage,
		"error", err,
		"event_type", e.EventType,
		"resource", e.Resource,
		"resource_id", e.ResourceID,
		"actor", e.Actor,
		"severity", e.Severity)
}

func defaultCategory(t models.EventType) models.Category {
	switch t {
	case models.EventLogin, models.EventLogout, models.EventLoginFailed:
		return models.CategoryAuthentication
	case models.EventPermissionGranted, models.EventPermissionRevoked:
		return models.CategoryAuthorization
	case models.EventPaymentProcessed, models.EventRefundIssued, models.EventPayoutSent:
		return models.CategoryFinancial
	case models.EventRead, models.EventExport:
		return models.CategoryDataAccess
	default:
		return models.CategoryDataModification
	}
}
