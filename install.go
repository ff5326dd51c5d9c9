package gpuspy

// unspyableMembers are never wrapped regardless of their value: the canvas
// handle, the drawing buffer size accessors and the engine marker.
var unspyableMembers = map[string]struct{}{
	"canvas":              {},
	"drawingBufferWidth":  {},
	"drawingBufferHeight": {},
	"glp":                 {},
}

// spyAll installs interceptors on the primary host and every extension.
func (s *ContextSpy) spyAll() {
	s.spySurface(s.info.host)
	for _, name := range s.info.extNames {
		s.spySurface(s.info.extensions[name])
	}
}

// spySurface ensures every eligible member of owner has an armed interceptor.
func (s *ContextSpy) spySurface(owner Surface) {
	for _, name := range s.candidates(owner) {
		if _, skip := unspyableMembers[name]; skip {
			continue
		}
		v, ok := owner.Member(name)
		if !ok || isNumericConstant(v) {
			continue
		}
		s.spyMember(name, owner)
	}
}

// candidates returns the member names considered for installation: the
// declared operations when configured, otherwise everything owner enumerates.
func (s *ContextSpy) candidates(owner Surface) []string {
	if len(s.opts.operations) == 0 {
		return owner.Members()
	}
	return s.opts.operations
}

// spyMember arms the interceptor for name, creating it on first sight.
// Failures are logged and never abort the surrounding pass.
func (s *ContextSpy) spyMember(name string, owner Surface) {
	icpt, ok := s.interceptors[name]
	if !ok {
		created, err := s.opts.factory(name, owner, s.onCommand, s.info)
		if err != nil {
			s.logger().Error("gpuspy: cannot create interceptor", "member", name, "err", err)
			return
		}
		icpt = created
		s.interceptors[name] = icpt
	}
	if err := icpt.Spy(); err != nil {
		s.logger().Error("gpuspy: cannot install interceptor", "member", name, "err", err)
	}
}

// unSpyAll restores every member that was wrapped.
func (s *ContextSpy) unSpyAll() {
	for name, icpt := range s.interceptors {
		if err := icpt.UnSpy(); err != nil {
			s.logger().Error("gpuspy: cannot remove interceptor", "member", name, "err", err)
		}
	}
}
