package task

// Clone deep-copies the tree rooted at file node f. The returned map sends
// every original node to its copy, so references held elsewhere (definition
// spans, for example) can be redirected into the new tree.
func Clone(f *Task) (*Task, map[*Task]*Task) {
	if f == nil {
		return nil, nil
	}
	mapping := make(map[*Task]*Task)
	root := cloneNode(f, nil, nil, mapping)
	return root, mapping
}

func cloneNode(src, parent, file *Task, mapping map[*Task]*Task) *Task {
	dst := &Task{
		ID:    src.ID,
		Type:  src.Type,
		Name:  src.Name,
		Mode:  src.Mode,
		Suite: parent,
		Meta:  src.Meta,
	}
	if file == nil {
		file = dst
	}
	dst.File = file
	if src.Result != nil {
		res := *src.Result
		res.Errors = append([]error(nil), src.Result.Errors...)
		dst.Result = &res
	}
	mapping[src] = dst
	if len(src.Tasks) > 0 {
		dst.Tasks = make([]*Task, 0, len(src.Tasks))
		for _, child := range src.Tasks {
			dst.Tasks = append(dst.Tasks, cloneNode(child, dst, file, mapping))
		}
	}
	return dst
}

// StripResults clears every Result in the tree rooted at t.
func StripResults(t *Task) {
	t.Walk(func(n *Task) bool {
		n.Result = nil
		return true
	})
}
