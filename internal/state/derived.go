package state

// SelectedConversation is a derived view over the Registry and the
// selection store: it mirrors the registry entry for the selected id and
// recomputes whenever either input changes. Close detaches it from both
// inputs; after Close it never fires again.
type SelectedConversation struct {
	out    *Store[Conversation]
	unsubs []func()
}

// DeriveSelectedConversation wires the derived view to its inputs.
func DeriveSelectedConversation(reg *Registry, selected *Store[int]) *SelectedConversation {
	d := &SelectedConversation{out: NewStore(Conversation{})}

	recompute := func() {
		id := selected.Get()
		if c, ok := reg.Get(id); ok {
			d.out.Set(c)
			return
		}
		d.out.Set(Conversation{})
	}

	regSub := reg.Subscribe(func([]Conversation) { recompute() })
	selSub := selected.Subscribe(func(int) { recompute() })
	d.unsubs = []func(){
		func() { reg.Unsubscribe(regSub) },
		func() { selected.Unsubscribe(selSub) },
	}

	recompute()
	return d
}

// Store returns the observable derived value.
func (d *SelectedConversation) Store() *Store[Conversation] {
	return d.out
}

// Close detaches the view from its inputs. Safe to call more than once.
func (d *SelectedConversation) Close() {
	for _, u := range d.unsubs {
		u()
	}
	d.unsubs = nil
}
