package models

// CloneMap deep-copies a config/context style map. Nested maps and slices are
// copied; scalar values are shared.
func CloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}

	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}

	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return CloneMap(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}

		return out
	default:
		return v
	}
}

// Clone returns a fully independent copy of the workflow: mutating the clone's
// node graph, configs or variables never touches the original.
func (w *Workflow) Clone() *Workflow {
	if w == nil {
		return nil
	}

	out := *w

	out.Nodes = make([]*Node, len(w.Nodes))
	for i, node := range w.Nodes {
		out.Nodes[i] = node.Clone()
	}

	out.Connections = make([]*Connection, len(w.Connections))
	for i, conn := range w.Connections {
		c := *conn
		out.Connections[i] = &c
	}

	if w.Variables != nil {
		out.Variables = make([]*Variable, len(w.Variables))
		for i, v := range w.Variables {
			out.Variables[i] = v.Clone()
		}
	}

	if w.Triggers != nil {
		out.Triggers = make([]*Trigger, len(w.Triggers))
		for i, t := range w.Triggers {
			out.Triggers[i] = t.Clone()
		}
	}

	if w.Schedule != nil {
		s := *w.Schedule
		if w.Schedule.StartAt != nil {
			at := *w.Schedule.StartAt
			s.StartAt = &at
		}
		out.Schedule = &s
	}

	out.Analytics = w.Analytics.Clone()
	out.Permissions = w.Permissions.Clone()

	return &out
}

// Clone deep-copies the node including its config payload.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}

	out := *n
	out.Config = CloneMap(n.Config)

	if n.Metadata.LastExecuted != nil {
		at := *n.Metadata.LastExecuted
		out.Metadata.LastExecuted = &at
	}

	return &out
}

// Clone deep-copies the variable value.
func (v *Variable) Clone() *Variable {
	if v == nil {
		return nil
	}

	out := *v
	out.Value = cloneValue(v.Value)

	return &out
}

// Clone deep-copies the trigger config.
func (t *Trigger) Clone() *Trigger {
	if t == nil {
		return nil
	}

	out := *t
	out.Config = CloneMap(t.Config)

	return &out
}

// Clone deep-copies the analytics aggregate including history and per-node
// performance.
func (a *WorkflowAnalytics) Clone() *WorkflowAnalytics {
	if a == nil {
		return nil
	}

	out := *a

	if a.LastExecuted != nil {
		at := *a.LastExecuted
		out.LastExecuted = &at
	}

	if a.ExecutionHistory != nil {
		out.ExecutionHistory = make([]*DailyStats, len(a.ExecutionHistory))
		for i, day := range a.ExecutionHistory {
			d := *day
			out.ExecutionHistory[i] = &d
		}
	}

	if a.NodePerformance != nil {
		out.NodePerformance = make(map[string]*NodeMetadata, len(a.NodePerformance))
		for id, meta := range a.NodePerformance {
			m := *meta
			if meta.LastExecuted != nil {
				at := *meta.LastExecuted
				m.LastExecuted = &at
			}
			out.NodePerformance[id] = &m
		}
	}

	return &out
}

// Clone copies the permission actor lists.
func (p Permissions) Clone() Permissions {
	out := p
	out.View = append([]string(nil), p.View...)
	out.Edit = append([]string(nil), p.Edit...)
	out.Execute = append([]string(nil), p.Execute...)
	out.Delete = append([]string(nil), p.Delete...)

	return out
}

// Clone deep-copies the template including its embedded definition.
func (t *WorkflowTemplate) Clone() *WorkflowTemplate {
	if t == nil {
		return nil
	}

	out := *t
	out.Tags = append([]string(nil), t.Tags...)
	out.Definition = *t.Definition.Clone()

	return &out
}

// Clone deep-copies an execution record for hand-off across store boundaries.
func (e *Execution) Clone() *Execution {
	if e == nil {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	out := &Execution{
		ID:            e.ID,
		WorkflowID:    e.WorkflowID,
		Status:        e.Status,
		StartTime:     e.StartTime,
		ExecutionTime: e.ExecutionTime,
		TriggeredBy:   e.TriggeredBy,
		Context:       CloneMap(e.Context),
		Variables:     CloneMap(e.Variables),
		ExecutedNodes: append([]string(nil), e.ExecutedNodes...),
		CurrentNodeID: e.CurrentNodeID,
	}

	if e.EndTime != nil {
		at := *e.EndTime
		out.EndTime = &at
	}

	out.Logs = make([]*ExecutionLog, len(e.Logs))
	for i, entry := range e.Logs {
		l := *entry
		l.Data = CloneMap(entry.Data)
		out.Logs[i] = &l
	}

	if e.Result != nil {
		r := *e.Result
		r.Output = CloneMap(e.Result.Output)
		out.Result = &r
	}

	return out
}
