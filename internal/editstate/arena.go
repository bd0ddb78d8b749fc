package editstate

// Ordered-list helpers for the form arenas. Elements are addressed by
// index at the call site; the element IDs minted by the New*Form
// constructors stay stable across insertion, removal, and reordering, so
// UI references held by ID never dangle into a different record.

// insertAt inserts v at index i, clamping i into [0, len(s)].
func insertAt[T any](s []T, i int, v T) []T {
	if i < 0 {
		i = 0
	}
	if i > len(s) {
		i = len(s)
	}
	s = append(s, v) // grow by one
	copy(s[i+1:], s[i:])
	s[i] = v
	return s
}

// removeAt removes the element at index i, preserving order. Out-of-range
// indices are a no-op.
func removeAt[T any](s []T, i int) []T {
	if i < 0 || i >= len(s) {
		return s
	}
	return append(s[:i], s[i+1:]...)
}

// moveTo moves the element at index from to index to, preserving the
// relative order of everything else. Out-of-range indices are a no-op.
func moveTo[T any](s []T, from, to int) []T {
	if from < 0 || from >= len(s) || to < 0 || to >= len(s) || from == to {
		return s
	}
	v := s[from]
	s = append(s[:from], s[from+1:]...)
	return insertAt(s, to, v)
}

// AddServer appends a fresh server record and returns it.
func (d *Document) AddServer() *ServerForm {
	d.Servers = append(d.Servers, NewServerForm())
	return &d.Servers[len(d.Servers)-1]
}

// RemoveServer removes the server record at index i.
func (d *Document) RemoveServer(i int) {
	d.Servers = removeAt(d.Servers, i)
}

// MoveServer reorders the server list.
func (d *Document) MoveServer(from, to int) {
	d.Servers = moveTo(d.Servers, from, to)
}

// AddPath appends a fresh path record and returns it.
func (d *Document) AddPath() *PathForm {
	d.Paths = append(d.Paths, NewPathForm())
	return &d.Paths[len(d.Paths)-1]
}

// RemovePath removes the path record at index i.
func (d *Document) RemovePath(i int) {
	d.Paths = removeAt(d.Paths, i)
}

// MovePath reorders the path list.
func (d *Document) MovePath(from, to int) {
	d.Paths = moveTo(d.Paths, from, to)
}

// AddOperation appends a fresh operation for the given method and returns it.
func (p *PathForm) AddOperation(method string) *OperationForm {
	p.Operations = append(p.Operations, NewOperationForm(method))
	return &p.Operations[len(p.Operations)-1]
}

// RemoveOperation removes the operation record at index i.
func (p *PathForm) RemoveOperation(i int) {
	p.Operations = removeAt(p.Operations, i)
}

// AddResponse appends a fresh response record and returns it.
func (o *OperationForm) AddResponse(statusCode string) *ResponseForm {
	o.Responses = append(o.Responses, NewResponseForm(statusCode))
	return &o.Responses[len(o.Responses)-1]
}

// RemoveResponse removes the response record at index i.
func (o *OperationForm) RemoveResponse(i int) {
	o.Responses = removeAt(o.Responses, i)
}

// AddContent appends a fresh content record and returns it.
func (r *ResponseForm) AddContent(contentType string) *ContentForm {
	r.Content = append(r.Content, NewContentForm(contentType))
	return &r.Content[len(r.Content)-1]
}

// RemoveContent removes the content record at index i.
func (r *ResponseForm) RemoveContent(i int) {
	r.Content = removeAt(r.Content, i)
}

// AddContent appends a fresh content record to a request body and returns it.
func (b *BodyForm) AddContent(contentType string) *ContentForm {
	b.Content = append(b.Content, NewContentForm(contentType))
	return &b.Content[len(b.Content)-1]
}

// RemoveContent removes the content record at index i.
func (b *BodyForm) RemoveContent(i int) {
	b.Content = removeAt(b.Content, i)
}

// AddProperty appends a fresh property record and returns it.
func (s *SchemaForm) AddProperty() *PropertyForm {
	s.Properties = append(s.Properties, NewPropertyForm())
	return &s.Properties[len(s.Properties)-1]
}

// RemoveProperty removes the property record at index i.
func (s *SchemaForm) RemoveProperty(i int) {
	s.Properties = removeAt(s.Properties, i)
}

// MoveProperty reorders the property list.
func (s *SchemaForm) MoveProperty(from, to int) {
	s.Properties = moveTo(s.Properties, from, to)
}

// AddSchemaComponent appends a fresh reusable-schema record and returns it.
func (c *ComponentsForm) AddSchemaComponent() *SchemaComponentForm {
	c.Schemas = append(c.Schemas, NewSchemaComponentForm())
	return &c.Schemas[len(c.Schemas)-1]
}

// RemoveSchemaComponent removes the reusable-schema record at index i.
func (c *ComponentsForm) RemoveSchemaComponent(i int) {
	c.Schemas = removeAt(c.Schemas, i)
}

// AddResponseComponent appends a fresh reusable-response record and returns it.
func (c *ComponentsForm) AddResponseComponent() *ResponseComponentForm {
	c.Responses = append(c.Responses, NewResponseComponentForm())
	return &c.Responses[len(c.Responses)-1]
}

// RemoveResponseComponent removes the reusable-response record at index i.
func (c *ComponentsForm) RemoveResponseComponent(i int) {
	c.Responses = removeAt(c.Responses, i)
}
