package dyntag

import (
	"github.com/google/uuid"
	"github.com/itsatony/go-dyntag/internal"
	"go.uber.org/zap"
)

// SessionState is the lifecycle state of a builder session.
type SessionState int

// Session states. Committed and Cancelled are terminal.
const (
	SessionClosed SessionState = iota
	SessionOpen
	SessionCommitted
	SessionCancelled
)

// String returns the state name.
func (s SessionState) String() string {
	switch s {
	case SessionOpen:
		return "open"
	case SessionCommitted:
		return "committed"
	case SessionCancelled:
		return "cancelled"
	default:
		return "closed"
	}
}

// IsTerminal reports whether no further transitions are possible.
func (s SessionState) IsTerminal() bool {
	return s == SessionCommitted || s == SessionCancelled
}

// Session is one editing interaction over a draft document. It is owned by
// a single caller and is not safe for concurrent mutation. The zero value
// is a closed session.
//
// Nothing reaches the host until Commit returns the canonical string.
type Session struct {
	id      string
	label   string
	initial string
	ctx     Context
	state   SessionState
	draft   *Document
	engine  *Engine
	logger  *zap.Logger
}

// Open starts a builder session seeded from the current stored value.
func (e *Engine) Open(label, current string, ctx Context) *Session {
	s := &Session{
		id:      uuid.NewString(),
		label:   label,
		initial: current,
		ctx:     ctx,
		state:   SessionOpen,
		draft:   e.Parse(current, ctx),
		engine:  e,
		logger:  e.logger,
	}
	s.logger.Debug(LogMsgSessionOpened,
		zap.String(LogFieldSessionID, s.id),
		zap.String(LogFieldLabel, label),
		zap.String(LogFieldContext, string(ctx)))
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Label returns the label of the control being edited.
func (s *Session) Label() string { return s.label }

// Context returns the context the session validates against.
func (s *Session) Context() Context { return s.ctx }

// State returns the lifecycle state.
func (s *Session) State() SessionState { return s.state }

// Initial returns the stored value the session was opened with.
func (s *Session) Initial() string { return s.initial }

// CurrentDocument returns a copy of the draft.
func (s *Session) CurrentDocument() *Document {
	if s.draft == nil {
		return &Document{Segments: []Segment{}, Context: s.ctx}
	}
	return s.draft.Clone()
}

// Text returns the canonical string of the draft.
func (s *Session) Text() string {
	if s.engine == nil {
		return ""
	}
	return s.engine.Serialize(s.draft)
}

// Diagnostics validates the draft. The result is advisory.
func (s *Session) Diagnostics() []Diagnostic {
	if s.engine == nil {
		return []Diagnostic{}
	}
	return Validate(s.draft, s.engine.catalog, s.ctx)
}

// ReplaceToken replaces the segment at index with tok.
func (s *Session) ReplaceToken(index int, tok Token) error {
	if err := s.checkEdit(); err != nil {
		return err
	}
	if err := checkToken(tok); err != nil {
		return err
	}
	if index < 0 || index >= len(s.draft.Segments) {
		return NewSegmentIndexError(index, len(s.draft.Segments))
	}
	s.draft.Segments[index] = &TokenSegment{Token: tok.Clone()}
	s.edited()
	return nil
}

// InsertToken inserts tok before the segment at index. An index equal to
// the segment count appends.
func (s *Session) InsertToken(index int, tok Token) error {
	if err := s.checkEdit(); err != nil {
		return err
	}
	if err := checkToken(tok); err != nil {
		return err
	}
	return s.insert(index, &TokenSegment{Token: tok.Clone()})
}

// AppendToken adds tok at the end of the draft.
func (s *Session) AppendToken(tok Token) error {
	if s.draft == nil {
		return s.InsertToken(0, tok)
	}
	return s.InsertToken(len(s.draft.Segments), tok)
}

// InsertLiteral inserts plain text before the segment at index. Adjacent
// literals are merged.
func (s *Session) InsertLiteral(index int, text string) error {
	if err := s.checkEdit(); err != nil {
		return err
	}
	return s.insert(index, &LiteralSegment{Text: text})
}

// RemoveSegment deletes the segment at index.
func (s *Session) RemoveSegment(index int) error {
	if err := s.checkEdit(); err != nil {
		return err
	}
	if index < 0 || index >= len(s.draft.Segments) {
		return NewSegmentIndexError(index, len(s.draft.Segments))
	}
	s.draft.Segments = append(s.draft.Segments[:index], s.draft.Segments[index+1:]...)
	s.edited()
	return nil
}

// SetText replaces the draft with the parse of raw.
func (s *Session) SetText(raw string) error {
	if err := s.checkEdit(); err != nil {
		return err
	}
	s.draft = s.engine.Parse(raw, s.ctx)
	s.edited()
	return nil
}

// Clear empties the draft. Committing afterwards disables the tag.
func (s *Session) Clear() error {
	if err := s.checkEdit(); err != nil {
		return err
	}
	s.draft = &Document{Segments: []Segment{}, Context: s.ctx}
	s.edited()
	return nil
}

// Commit serializes the draft and ends the session. Diagnostics do not
// block the commit.
func (s *Session) Commit() (string, error) {
	if err := s.checkEdit(); err != nil {
		return "", err
	}
	out := s.engine.Serialize(s.draft)
	s.state = SessionCommitted
	s.logger.Debug(LogMsgSessionCommitted,
		zap.String(LogFieldSessionID, s.id),
		zap.Int(LogFieldSource, len(out)))
	return out, nil
}

// Cancel discards the draft. It always succeeds; on a session that is not
// open it does nothing.
func (s *Session) Cancel() {
	if s.state != SessionOpen {
		return
	}
	s.state = SessionCancelled
	s.draft = nil
	s.logger.Debug(LogMsgSessionCancelled, zap.String(LogFieldSessionID, s.id))
}

func (s *Session) checkEdit() error {
	if s.state != SessionOpen || s.engine == nil {
		return NewSessionClosedError(s.id, s.state)
	}
	return nil
}

func (s *Session) insert(index int, seg Segment) error {
	if index < 0 || index > len(s.draft.Segments) {
		return NewSegmentIndexError(index, len(s.draft.Segments))
	}
	segs := make([]Segment, 0, len(s.draft.Segments)+1)
	segs = append(segs, s.draft.Segments[:index]...)
	segs = append(segs, seg)
	segs = append(segs, s.draft.Segments[index:]...)
	s.draft.Segments = segs
	s.edited()
	return nil
}

// edited merges adjacent literals and drops empty ones so the draft keeps
// the shape the parser produces.
func (s *Session) edited() {
	segs := make([]Segment, 0, len(s.draft.Segments))
	for _, seg := range s.draft.Segments {
		lit, ok := seg.(*LiteralSegment)
		if !ok {
			segs = append(segs, seg)
			continue
		}
		if lit.Text == "" {
			continue
		}
		if n := len(segs); n > 0 {
			if prev, ok := segs[n-1].(*LiteralSegment); ok {
				segs[n-1] = &LiteralSegment{Text: prev.Text + lit.Text, Position: prev.Position}
				continue
			}
		}
		segs = append(segs, lit)
	}
	s.draft.Segments = segs
	s.logger.Debug(LogMsgSessionEdited,
		zap.String(LogFieldSessionID, s.id),
		zap.Int(LogFieldSegments, len(segs)))
}

func checkToken(tok Token) error {
	if !internal.IsIdentifier(tok.Group) || !internal.IsIdentifier(tok.Field) {
		return NewInvalidTokenError(tok.Group, tok.Field)
	}
	for _, m := range tok.Modifiers {
		if !internal.IsIdentifier(m.Key) {
			return NewInvalidModifierKeyError(m.Key)
		}
	}
	return nil
}
