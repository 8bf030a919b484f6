package view

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/cloudconsole/internal/flux"
	"github.com/wolfeidau/cloudconsole/internal/models"
	"github.com/wolfeidau/cloudconsole/internal/service"
	"github.com/wolfeidau/cloudconsole/internal/state"
)

const (
	DefaultGraceDelay   = time.Second
	DefaultMessageDelay = 3 * time.Second

	// SavedMessage is shown after a successful save.
	SavedMessage = "Your changes have been saved"
)

var (
	ErrEditingDisabled = errors.New("editing is disabled while a request is in flight")
	ErrNotPersisted    = errors.New("vpc has not been saved")
)

// VpcService commits and removes VPCs. *service.Service implements it.
type VpcService interface {
	CommitVpc(ctx context.Context, vpc models.Vpc) *service.Result
	RemoveVpc(ctx context.Context, id string) *service.Result
}

// Config holds the editor delays.
type Config struct {
	// GraceDelay is how long after a save the pending edit is kept before
	// the editor falls back to the store copy.
	GraceDelay time.Duration
	// MessageDelay is how long the saved message is shown.
	MessageDelay time.Duration
}

// ApplyDefaults fills in zero delays.
func (c *Config) ApplyDefaults() {
	if c.GraceDelay <= 0 {
		c.GraceDelay = DefaultGraceDelay
	}
	if c.MessageDelay <= 0 {
		c.MessageDelay = DefaultMessageDelay
	}
}

// EditorState is a readout of the editor for rendering and tests.
type EditorState struct {
	Disabled bool
	Changed  bool
	Message  string
	Pending  *models.Vpc
	Err      error
}

// Option is a select entry.
type Option struct {
	Value string
	Label string
}

// VpcEditor edits a single VPC with a local pending copy.
//
// The pending copy, when present, is what the editor displays. It is created
// by the first Set and dropped by Cancel or a successful save once the grace
// delay passes without a new edit. Every method must be called on the loop
// goroutine.
type VpcEditor struct {
	reg *state.Registry
	svc VpcService
	cfg Config

	canonical models.Vpc
	pending   *models.Vpc
	disabled  bool
	changed   bool
	message   string
	err       error

	selected bool
	onSelect func(shift bool)
	onClose  func()

	listeners  []func()
	graceTimer *flux.Timer
	msgTimer   *flux.Timer

	// gen changes on Unmount. Request and timer callbacks started under an
	// older gen are ignored.
	gen uint64

	// OnUpdate is called after any change that affects Render.
	OnUpdate func()
}

// EditorOption configures a VpcEditor.
type EditorOption func(*VpcEditor)

// WithConfig sets the editor delays.
func WithConfig(cfg Config) EditorOption {
	return func(e *VpcEditor) {
		e.cfg = cfg
	}
}

// WithSelection sets the selection state and the handler called on Toggle.
func WithSelection(selected bool, onSelect func(shift bool)) EditorOption {
	return func(e *VpcEditor) {
		e.selected = selected
		e.onSelect = onSelect
	}
}

// WithOnClose sets the handler called on Close.
func WithOnClose(fn func()) EditorOption {
	return func(e *VpcEditor) {
		e.onClose = fn
	}
}

// NewVpcEditor creates an editor for vpc. A vpc without an ID is created on
// the first save.
func NewVpcEditor(reg *state.Registry, svc VpcService, vpc models.Vpc, opts ...EditorOption) *VpcEditor {
	e := &VpcEditor{
		reg:       reg,
		svc:       svc,
		canonical: vpc.Clone(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.cfg.ApplyDefaults()
	return e
}

// Mount subscribes the editor to the stores it renders from.
func (e *VpcEditor) Mount() {
	if len(e.listeners) > 0 {
		return
	}

	vpcs := e.reg.Vpcs.AddChangeListener(func() {
		e.refresh()
		e.notify()
	})
	orgs := e.reg.Organizations.AddChangeListener(e.notify)
	dcs := e.reg.Datacenters.AddChangeListener(e.notify)

	e.listeners = []func(){
		func() { e.reg.Vpcs.RemoveChangeListener(vpcs) },
		func() { e.reg.Organizations.RemoveChangeListener(orgs) },
		func() { e.reg.Datacenters.RemoveChangeListener(dcs) },
	}
	e.refresh()
}

// Unmount removes store subscriptions and cancels scheduled cleanups. A save
// or delete still in flight completes on the server but no longer updates
// the editor.
func (e *VpcEditor) Unmount() {
	for _, remove := range e.listeners {
		remove()
	}
	e.listeners = nil
	e.stopTimers()

	e.gen++
	e.disabled = false
}

// Set changes one field of the pending copy, creating it from the store copy
// if there is none.
func (e *VpcEditor) Set(field, value string) error {
	if e.disabled {
		return ErrEditingDisabled
	}

	var next models.Vpc
	if e.pending != nil {
		next = e.pending.Clone()
	} else {
		next = e.canonical.Clone()
	}
	if err := next.Set(field, value); err != nil {
		return err
	}

	e.pending = &next
	e.changed = true
	e.notify()
	return nil
}

// Save commits the pending copy. It does nothing when there is no pending
// edit.
func (e *VpcEditor) Save(ctx context.Context) error {
	if e.disabled {
		return ErrEditingDisabled
	}
	if e.pending == nil {
		return nil
	}

	e.disabled = true
	e.err = nil
	e.notify()

	gen := e.gen
	res := e.svc.CommitVpc(ctx, e.pending.Clone())
	res.Then(func(err error) {
		if gen != e.gen {
			return
		}

		e.disabled = false
		if err != nil {
			log.Warn().Err(err).Str("vpc_id", e.canonical.ID).Msg("Failed to save vpc")
			e.message = ""
			e.err = err
			e.notify()
			return
		}

		// a created VPC takes the server assigned ID so later saves update it
		if e.canonical.ID == "" && res.ID() != "" {
			e.canonical.ID = res.ID()
			if e.pending != nil {
				e.pending.ID = res.ID()
				e.canonical = e.pending.Clone()
			}
			e.refresh()
		}

		e.message = SavedMessage
		e.changed = false
		e.scheduleCleanup()
		e.notify()
	})
	return nil
}

// Cancel drops the pending copy.
func (e *VpcEditor) Cancel() {
	e.pending = nil
	e.changed = false
	e.err = nil
	e.notify()
}

// Delete removes the VPC on the server.
func (e *VpcEditor) Delete(ctx context.Context) error {
	if e.disabled {
		return ErrEditingDisabled
	}
	if e.canonical.ID == "" {
		return ErrNotPersisted
	}

	e.disabled = true
	e.err = nil
	e.notify()

	gen := e.gen
	e.svc.RemoveVpc(ctx, e.canonical.ID).Then(func(err error) {
		if gen != e.gen {
			return
		}

		e.disabled = false
		if err != nil {
			log.Warn().Err(err).Str("vpc_id", e.canonical.ID).Msg("Failed to remove vpc")
			e.err = err
		}
		e.notify()
	})
	return nil
}

// Toggle reports a selection click to the parent.
func (e *VpcEditor) Toggle(shift bool) {
	if e.onSelect != nil {
		e.onSelect(shift)
	}
}

// SetSelected updates the checkbox state owned by the parent.
func (e *VpcEditor) SetSelected(selected bool) {
	e.selected = selected
	e.notify()
}

// Close asks the parent to close the editor.
func (e *VpcEditor) Close() {
	if e.onClose != nil {
		e.onClose()
	}
}

// Display returns the VPC as it should be shown.
func (e *VpcEditor) Display() models.Vpc {
	if e.pending != nil {
		return e.pending.Clone()
	}
	return e.canonical.Clone()
}

// State returns the current editor state.
func (e *VpcEditor) State() EditorState {
	s := EditorState{
		Disabled: e.disabled,
		Changed:  e.changed,
		Message:  e.message,
		Err:      e.err,
	}
	if e.pending != nil {
		p := e.pending.Clone()
		s.Pending = &p
	}
	return s
}

// OrganizationOptions returns the organization choices, led by an empty one.
func (e *VpcEditor) OrganizationOptions() []Option {
	opts := []Option{{Value: "", Label: "None"}}
	for _, org := range e.reg.Organizations.Snapshot().All() {
		opts = append(opts, Option{Value: org.ID, Label: org.Name})
	}
	return opts
}

// DatacenterOptions returns the datacenter choices, led by an empty one.
func (e *VpcEditor) DatacenterOptions() []Option {
	opts := []Option{{Value: "", Label: "None"}}
	for _, dc := range e.reg.Datacenters.Snapshot().All() {
		opts = append(opts, Option{Value: dc.ID, Label: dc.Name})
	}
	return opts
}

// Render returns the editor card.
func (e *VpcEditor) Render() string {
	vpc := e.Display()

	header := lipgloss.JoinHorizontal(lipgloss.Top,
		checkbox(e.selected)+" ",
		titleStyle.Render(orDefault(vpc.Name, "New VPC")),
	)

	org, _ := e.reg.Organizations.ByID(vpc.Organization)
	dc, _ := e.reg.Datacenters.ByID(vpc.Datacenter)

	lines := []string{
		header,
		labelStyle.Render("ID") + valueStyle.Render(orDefault(e.canonical.ID, "Unknown")),
		e.field("Name", models.VpcFieldName, vpc.Name),
		e.field("Network", models.VpcFieldNetwork, vpc.Network),
		e.field("Organization", models.VpcFieldOrganization, orDefault(org.Name, orDefault(vpc.Organization, "None"))),
		e.field("Datacenter", models.VpcFieldDatacenter, orDefault(dc.Name, orDefault(vpc.Datacenter, "None"))),
	}

	if bar := e.renderSaveBar(); bar != "" {
		lines = append(lines, bar)
	}
	return cardStyle.Render(strings.Join(lines, "\n"))
}

func (e *VpcEditor) field(label, field, value string) string {
	style := valueStyle
	if e.fieldChanged(field) {
		style = changedStyle
	}
	return labelStyle.Render(label) + style.Render(value)
}

func (e *VpcEditor) fieldChanged(field string) bool {
	if !e.changed || e.pending == nil {
		return false
	}
	cur, err := e.canonical.Get(field)
	if err != nil {
		return false
	}
	pend, err := e.pending.Get(field)
	return err == nil && cur != pend
}

// renderSaveBar returns "" unless there is a pending edit, a message or an
// error to show.
func (e *VpcEditor) renderSaveBar() string {
	if e.pending == nil && e.message == "" && e.err == nil {
		return ""
	}

	var parts []string
	switch {
	case e.err != nil:
		parts = append(parts, errorStyle.Render(fmt.Sprintf("Error: %v", e.err)))
	case e.message != "":
		parts = append(parts, successStyle.Render(e.message))
	}

	switch {
	case e.disabled:
		parts = append(parts, disabledStyle.Render("Saving..."))
	case e.changed:
		parts = append(parts, "[cancel] [save]")
	}

	return saveBarStyle.Render(strings.Join(parts, "  "))
}

// scheduleCleanup drops the pending copy and then the message once their
// delays pass. A Set in the meantime leaves both in place.
func (e *VpcEditor) scheduleCleanup() {
	e.stopTimers()

	gen := e.gen
	e.graceTimer = e.reg.Loop.AfterFunc(e.cfg.GraceDelay, func() {
		if e.changed || gen != e.gen {
			return
		}
		e.pending = nil
		e.notify()
	})
	e.msgTimer = e.reg.Loop.AfterFunc(e.cfg.MessageDelay, func() {
		if e.changed || gen != e.gen {
			return
		}
		e.message = ""
		e.notify()
	})
}

func (e *VpcEditor) stopTimers() {
	if e.graceTimer != nil {
		e.graceTimer.Stop()
		e.graceTimer = nil
	}
	if e.msgTimer != nil {
		e.msgTimer.Stop()
		e.msgTimer = nil
	}
}

// refresh reloads the store copy. A VPC missing from the store keeps its last
// known values.
func (e *VpcEditor) refresh() {
	if e.canonical.ID == "" {
		return
	}
	if vpc, ok := e.reg.Vpcs.ByID(e.canonical.ID); ok {
		e.canonical = vpc
	}
}

func (e *VpcEditor) notify() {
	if e.OnUpdate != nil {
		e.OnUpdate()
	}
}
