package render

import "github.com/go-gl/mathgl/mgl64"

// MatrixStack is a fixed-function style matrix stack. The bottom entry is
// never popped.
type MatrixStack struct {
	stack []mgl64.Mat4
}

// NewMatrixStack creates a stack holding the identity
func NewMatrixStack() *MatrixStack {
	return &MatrixStack{stack: []mgl64.Mat4{mgl64.Ident4()}}
}

// Top returns the current matrix
func (s *MatrixStack) Top() mgl64.Mat4 {
	return s.stack[len(s.stack)-1]
}

// Push duplicates the current matrix
func (s *MatrixStack) Push() {
	s.stack = append(s.stack, s.Top())
}

// Pop discards the current matrix. It reports false on underflow.
func (s *MatrixStack) Pop() bool {
	if len(s.stack) == 1 {
		return false
	}
	s.stack = s.stack[:len(s.stack)-1]
	return true
}

// Load replaces the current matrix
func (s *MatrixStack) Load(m mgl64.Mat4) {
	s.stack[len(s.stack)-1] = m
}

// Mult post-multiplies the current matrix by m
func (s *MatrixStack) Mult(m mgl64.Mat4) {
	s.Load(s.Top().Mul4(m))
}

// Depth returns the number of pushed entries above the base
func (s *MatrixStack) Depth() int {
	return len(s.stack) - 1
}
