// Package bt is a minimal behaviour tree. Nodes share state through an
// opaque Blackboard that leaf functions type-assert to their own struct.
package bt

type Status int

const (
	StatusSuccess Status = iota
	StatusFailure
	StatusRunning
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusFailure:
		return "failure"
	case StatusRunning:
		return "running"
	}
	return "unknown"
}

type Node interface {
	Tick(bb Blackboard) Status
}

type Blackboard interface{}

// Selector returns the first child status that is not a failure.
type Selector struct {
	Children []Node
}

func (s *Selector) Tick(bb Blackboard) Status {
	for _, child := range s.Children {
		if status := child.Tick(bb); status != StatusFailure {
			return status
		}
	}
	return StatusFailure
}

// Sequence stops at the first child that does not succeed.
type Sequence struct {
	Children []Node
}

func (s *Sequence) Tick(bb Blackboard) Status {
	for _, child := range s.Children {
		if status := child.Tick(bb); status != StatusSuccess {
			return status
		}
	}
	return StatusSuccess
}

type ConditionFunc func(bb Blackboard) bool

type Condition struct {
	Check ConditionFunc
}

func (c *Condition) Tick(bb Blackboard) Status {
	if c.Check != nil && c.Check(bb) {
		return StatusSuccess
	}
	return StatusFailure
}

type ActionFunc func(bb Blackboard) Status

type Action struct {
	Do ActionFunc
}

func (a *Action) Tick(bb Blackboard) Status {
	if a.Do == nil {
		return StatusFailure
	}
	return a.Do(bb)
}

// Inverter swaps success and failure.
type Inverter struct {
	Child Node
}

func (i *Inverter) Tick(bb Blackboard) Status {
	switch i.Child.Tick(bb) {
	case StatusSuccess:
		return StatusFailure
	case StatusFailure:
		return StatusSuccess
	}
	return StatusRunning
}

// Cooldown fails for Ticks ticks after its child last succeeded.
type Cooldown struct {
	Child Node
	Ticks int

	remaining int
}

func (c *Cooldown) Tick(bb Blackboard) Status {
	if c.remaining > 0 {
		c.remaining--
		return StatusFailure
	}
	status := c.Child.Tick(bb)
	if status == StatusSuccess {
		c.remaining = c.Ticks
	}
	return status
}
