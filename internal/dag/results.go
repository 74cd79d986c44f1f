package dag

// Result is the output of one terminal task.
type Result struct {
	Task  string
	Value any
}

// Results holds terminal task outputs in terminal order.
type Results []Result

// Get returns the result of the named terminal task.
func (r Results) Get(name string) (any, bool) {
	for _, res := range r {
		if res.Task == name {
			return res.Value, true
		}
	}
	return nil, false
}

// Names returns the terminal task names in order.
func (r Results) Names() []string {
	names := make([]string, len(r))
	for i, res := range r {
		names[i] = res.Task
	}
	return names
}

// Map returns the results keyed by task name.
func (r Results) Map() map[string]any {
	m := make(map[string]any, len(r))
	for _, res := range r {
		m[res.Task] = res.Value
	}
	return m
}
