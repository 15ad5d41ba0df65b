package tracing

import (
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span names.
const (
	SpanPass    = "highlight.pass"
	SpanErase   = "highlight.erase"
	SpanIcon    = "icon.synthesize"
	SpanCompile = "matcher.compile"
)

// Span attribute keys.
const (
	AttrPassID      = "pass.id"
	AttrViewID      = "view.id"
	AttrFileName    = "view.file_name"
	AttrScanMode    = "pass.scan_mode"
	AttrLines       = "pass.lines"
	AttrMatches     = "pass.matches"
	AttrGroups      = "pass.groups"
	AttrDurationMs  = "pass.duration_ms"
	AttrColor       = "icon.color"
	AttrShape       = "icon.shape"
	AttrBackdrop    = "icon.backdrop"
	AttrTableDigest = "matcher.digest"
	AttrTokens      = "matcher.tokens"
)

// Event names.
const (
	EventIconFailed   = "icon.failed"
	EventMatchDropped = "match.dropped"
	EventMerged       = "groups.merged"
)

// RecordError marks span as failed with err.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
