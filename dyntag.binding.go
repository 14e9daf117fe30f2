package dyntag

// Attributes is the host's attribute bag for one control instance.
type Attributes map[string]string

// Binding decides where a control's dynamic expression lives in its
// attribute bag. Both conventions sit on top of the same engine: the engine
// only ever sees the one string a binding reads or writes.
type Binding interface {
	// Read returns the string to open a builder session with.
	Read(attrs Attributes) string
	// Write stores a committed string and returns the bag, allocating one
	// when attrs is nil. An empty string disables the tag.
	Write(attrs Attributes, committed string) Attributes
	// Effective returns the value the renderer should resolve.
	Effective(attrs Attributes) string
}

// SideChannelName returns the name of the override attribute for base.
func SideChannelName(base string) string {
	return base + SideChannelSuffix
}

// WholeValueBinding keeps the expression in the attribute itself.
type WholeValueBinding struct {
	Attribute string
}

// Read implements Binding.
func (b WholeValueBinding) Read(attrs Attributes) string {
	return attrs[b.Attribute]
}

// Write implements Binding.
func (b WholeValueBinding) Write(attrs Attributes, committed string) Attributes {
	if attrs == nil {
		attrs = Attributes{}
	}
	attrs[b.Attribute] = committed
	return attrs
}

// Effective implements Binding.
func (b WholeValueBinding) Effective(attrs Attributes) string {
	return attrs[b.Attribute]
}

// SideChannelBinding keeps the expression in the `<base>DynamicTag`
// attribute and leaves the base attribute holding a literal fallback.
type SideChannelBinding struct {
	Base string
}

// Name returns the side-channel attribute name.
func (b SideChannelBinding) Name() string {
	return SideChannelName(b.Base)
}

// Read implements Binding.
func (b SideChannelBinding) Read(attrs Attributes) string {
	return attrs[b.Name()]
}

// Write implements Binding. Committing the empty string removes the
// override so the literal fallback applies again.
func (b SideChannelBinding) Write(attrs Attributes, committed string) Attributes {
	if committed == "" {
		delete(attrs, b.Name())
		return attrs
	}
	if attrs == nil {
		attrs = Attributes{}
	}
	attrs[b.Name()] = committed
	return attrs
}

// Effective implements Binding. A non-empty override wins over the base
// literal.
func (b SideChannelBinding) Effective(attrs Attributes) string {
	if v := attrs[b.Name()]; v != "" {
		return v
	}
	return attrs[b.Base]
}

// Disable returns the value that turns a dynamic tag off.
func Disable(string) string {
	return ""
}
