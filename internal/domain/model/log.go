package model

import "fmt"

// WarningKind classifies the recoverable conditions a stage may observe.
// Warnings travel with the record and are surfaced in the batch report; they
// never fail a file on their own.
type WarningKind string

const (
	WarnRankRepaired    WarningKind = "rank_repaired"
	WarnBetasPadded     WarningKind = "betas_padded"
	WarnBetasTruncated  WarningKind = "betas_truncated"
	WarnBetasCollapsed  WarningKind = "betas_collapsed"
	WarnNonFinite       WarningKind = "non_finite_values"
	WarnImputedFPS      WarningKind = "imputed_fps"
	WarnLegacyFrameKey  WarningKind = "legacy_frame_rate_key"
	WarnShortPoseVector WarningKind = "short_pose_vector"
	WarnPoseTruncated   WarningKind = "pose_truncated"
	WarnUnexpectedWidth WarningKind = "unexpected_pose_width"
)

// Warning is one warning-class observation.
type Warning struct {
	Kind    WarningKind
	Message string
}

// Log is the ordered list of warnings attached to a record.
type Log []Warning

// Add appends a formatted warning.
func (l *Log) Add(kind WarningKind, format string, args ...any) {
	*l = append(*l, Warning{Kind: kind, Message: fmt.Sprintf(format, args...)})
}

// Messages flattens the log for reporting.
func (l Log) Messages() []string {
	out := make([]string, len(l))
	for i, w := range l {
		out[i] = string(w.Kind) + ": " + w.Message
	}
	return out
}

// Has reports whether any warning of the given kind was recorded.
func (l Log) Has(kind WarningKind) bool {
	for _, w := range l {
		if w.Kind == kind {
			return true
		}
	}
	return false
}
