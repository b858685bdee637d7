package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	apperrors "github.com/corpdir/api/internal/pkg/errors"
)

// VerbosityDebug is the verbosity at which call tracing is enabled.
const VerbosityDebug = "debug"

// Trace directions.
const (
	DirectionEnter = "enter"
	DirectionExit  = "exit"
	DirectionFail  = "fail"
)

// Redacted replaces the value of every sensitive field in a trace payload.
const Redacted = "<removed>"

// DefaultRedactFields lists the fields removed from trace payloads when a
// Tracer sets none.
var DefaultRedactFields = []string{"password", "token"}

// DefaultArrayThreshold is the longest sequence traced in full.
const DefaultArrayThreshold = 30

// Tracer is the logging context of a service. It is read-only once built.
type Tracer struct {
	logger    *zap.Logger
	verbosity string
	redact    []string
	threshold int
}

// TracerConfig configures a Tracer.
type TracerConfig struct {
	Verbosity      string
	RedactFields   []string
	ArrayThreshold int
}

// NewTracer creates a Tracer writing to logger. Unset redaction fields and
// threshold fall back to DefaultRedactFields and DefaultArrayThreshold.
func NewTracer(logger *zap.Logger, cfg TracerConfig) *Tracer {
	if logger == nil {
		logger = zap.NewNop()
	}
	fields := cfg.RedactFields
	if len(fields) == 0 {
		fields = DefaultRedactFields
	}
	threshold := cfg.ArrayThreshold
	if threshold <= 0 {
		threshold = DefaultArrayThreshold
	}

	redact := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			redact = append(redact, f)
		}
	}

	return &Tracer{
		logger:    logger.Named("trace"),
		verbosity: cfg.Verbosity,
		redact:    redact,
		threshold: threshold,
	}
}

// Enabled reports whether calls are traced.
func (t *Tracer) Enabled() bool {
	return t != nil && t.verbosity == VerbosityDebug
}

// Decorate wraps op to log enter, exit and fail records. When tracing is
// disabled op itself is returned.
func (t *Tracer) Decorate(op *Operation) *Operation {
	if !t.Enabled() {
		return op
	}

	next := op.Fn
	names := Names(op)
	return &Operation{
		Name:   op.Name,
		Params: op.Params,
		Schema: op.Schema,
		Fn: func(ctx context.Context, await Await, args Args) (any, error) {
			enter := []zap.Field{
				zap.String("operation", op.Name),
				zap.String("direction", DirectionEnter),
			}
			if len(names) > 0 {
				enter = append(enter, zap.Any("payload", t.Sanitize(Record(names, args))))
			}
			t.logger.Debug("ENTER "+op.Name, enter...)

			return settle(await, func(await Await) (any, error) {
				return next(ctx, await, args)
			}, func(result any, err error) {
				if err != nil {
					t.fail(op.Name, err)
					return
				}
				t.logger.Debug("EXIT "+op.Name,
					zap.String("operation", op.Name),
					zap.String("direction", DirectionExit),
					zap.Any("payload", t.Sanitize(result)),
				)
			})
		},
	}
}

func (t *Tracer) fail(name string, err error) {
	fields := []zap.Field{
		zap.String("operation", name),
		zap.String("direction", DirectionFail),
		zap.String("payload", err.Error()),
		zap.String("kind", Kind(err)),
	}
	if apperrors.MarkCaptured(err) {
		fields = append(fields, zap.StackSkip("stack", 2))
	}
	t.logger.Debug("Error happened in "+name, fields...)
}

// Kind returns the tag of err: an AppError code, "unique_constraint" or
// "unclassified".
func Kind(err error) string {
	if appErr := apperrors.GetAppError(err); appErr != nil {
		return appErr.Code
	}
	if apperrors.IsUniqueConstraint(err) {
		return "unique_constraint"
	}
	return "unclassified"
}

// redacted reports whether key names a sensitive field. Matching ignores
// case and accepts any key containing a redact field, so accessToken and
// Password are both hidden.
func (t *Tracer) redacted(key string) bool {
	key = strings.ToLower(key)
	for _, f := range t.redact {
		if strings.Contains(key, f) {
			return true
		}
	}
	return false
}

// Sanitize returns a JSON-shaped copy of v with sensitive fields redacted
// and long sequences summarized as "Array(<n>)". Values that cannot be
// encoded are returned unchanged.
func (t *Tracer) Sanitize(v any) any {
	raw, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return v
	}
	return t.scrub(decoded)
}

func (t *Tracer) scrub(v any) any {
	switch val := v.(type) {
	case map[string]any:
		for k, child := range val {
			if t.redacted(k) {
				val[k] = Redacted
				continue
			}
			val[k] = t.scrub(child)
		}
		return val
	case []any:
		if len(val) > t.threshold {
			return fmt.Sprintf("Array(%d)", len(val))
		}
		for i, child := range val {
			val[i] = t.scrub(child)
		}
		return val
	}
	return v
}
