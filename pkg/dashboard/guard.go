package dashboard

import "fmt"

// MsgRenderFault prefixes the error shown after a presentation fault.
const MsgRenderFault = "Something went wrong"

// Guard runs render against the current snapshot. A panic inside render is
// recovered: the displayed data rolls back to the last snapshot that
// rendered cleanly and the fault becomes the session error. Loading flags
// and in-flight requests are left alone.
func (s *Session) Guard(render func(Snapshot) error) (err error) {
	s.mu.Lock()
	candidate := s.state
	snap := s.snapshotLocked()
	s.mu.Unlock()

	defer func() {
		r := recover()
		if r == nil {
			return
		}
		msg := fmt.Sprintf("%s: %v", MsgRenderFault, r)
		s.mu.Lock()
		s.rollbackLocked(msg)
		s.mu.Unlock()
		err = fmt.Errorf("dashboard: render panic: %v", r)
	}()

	if err = render(snap); err != nil {
		return err
	}
	s.mu.Lock()
	good := candidate
	s.good = &good
	s.mu.Unlock()
	return nil
}

func (s *Session) rollbackLocked(msg string) {
	good := initialState()
	if s.good != nil {
		good = *s.good
	}
	st := &s.state
	st.step = good.step
	st.sampleMode = good.sampleMode
	st.trend = good.trend
	st.visuals = good.visuals
	st.scripts = good.scripts
	st.tab = good.tab
	st.err = msg
}
