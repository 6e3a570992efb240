package cancel

// Group fires as soon as any member fires.
type Group []Canceler

// Any groups cs. Nil members are skipped.
func Any(cs ...Canceler) Group {
	g := make(Group, 0, len(cs))
	for _, c := range cs {
		if c != nil {
			g = append(g, c)
		}
	}
	return g
}

// Done reports whether any member has fired.
func (g Group) Done() bool {
	for _, c := range g {
		if c.Done() {
			return true
		}
	}
	return false
}

// Cancel fires every member.
func (g Group) Cancel() {
	for _, c := range g {
		c.Cancel()
	}
}

// Cause returns the cause of the first member, in group order, that has
// fired.
func (g Group) Cause() error {
	for _, c := range g {
		if err := c.Cause(); err != nil {
			return err
		}
	}
	return nil
}
