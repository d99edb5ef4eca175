package musicxml

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/ndisidore/scorebind/pkg/xmlschema"
)

// Backup moves the time cursor backwards, typically to start another voice.
type Backup struct {
	Duration Divisions
	Fragment
}

// NewBackup returns a backup of d divisions.
func NewBackup(d Divisions) *Backup {
	return &Backup{Duration: d}
}

func (*Backup) Kind() Kind          { return KindBackup }
func (*Backup) ElementName() string { return KindBackup.String() }

// Clone returns a deep copy.
func (b *Backup) Clone() *Backup {
	return &Backup{Duration: b.Duration, Fragment: b.Fragment.clone()}
}

func (b *Backup) CloneElement(xmlschema.Flags, xmlschema.Container) xmlschema.Element {
	return b.Clone()
}

func (b *Backup) encodeTo(e *etree.Element) {
	b.encodeAttrs(e)
	e.CreateElement("duration").SetText(b.Duration.String())
	b.encodeChildren(e)
}

func (b *Backup) validate() error {
	return validateDuration(KindBackup, b.Duration)
}

func decodeBackup(e *etree.Element) (*Backup, error) {
	d, err := decodeDuration(e)
	if err != nil {
		return nil, err
	}
	return &Backup{
		Duration: d,
		Fragment: fragmentOf(e, nil, claimTags("duration")),
	}, nil
}

// Forward moves the time cursor forwards, leaving a gap in a voice.
type Forward struct {
	Duration Divisions
	Voice    xmlschema.Optional[string]
	Staff    xmlschema.Optional[int]
	Fragment
}

// NewForward returns a forward of d divisions.
func NewForward(d Divisions) *Forward {
	return &Forward{Duration: d}
}

func (*Forward) Kind() Kind          { return KindForward }
func (*Forward) ElementName() string { return KindForward.String() }

// Clone returns a deep copy.
func (f *Forward) Clone() *Forward {
	return &Forward{
		Duration: f.Duration,
		Voice:    f.Voice,
		Staff:    f.Staff,
		Fragment: f.Fragment.clone(),
	}
}

func (f *Forward) CloneElement(xmlschema.Flags, xmlschema.Container) xmlschema.Element {
	return f.Clone()
}

// footnote and level precede voice and staff in the content model, so the
// retained children go between duration and voice.
func (f *Forward) encodeTo(e *etree.Element) {
	f.encodeAttrs(e)
	e.CreateElement("duration").SetText(f.Duration.String())
	f.encodeChildren(e)
	if v, ok := f.Voice.Value(); ok {
		e.CreateElement("voice").SetText(v)
	}
	if s, ok := f.Staff.Value(); ok {
		e.CreateElement("staff").SetText(strconv.Itoa(s))
	}
}

func (f *Forward) validate() error {
	if err := validateDuration(KindForward, f.Duration); err != nil {
		return err
	}
	if s, ok := f.Staff.Value(); ok && s <= 0 {
		return fmt.Errorf("forward staff %d: %w", s, ErrNotPositive)
	}
	return nil
}

func decodeForward(e *etree.Element) (*Forward, error) {
	d, err := decodeDuration(e)
	if err != nil {
		return nil, err
	}
	fw := &Forward{
		Duration: d,
		Fragment: fragmentOf(e, nil, claimTags("duration", "voice", "staff")),
	}
	if c := e.SelectElement("voice"); c != nil {
		fw.Voice.Set(strings.TrimSpace(c.Text()))
	}
	if c := e.SelectElement("staff"); c != nil {
		raw := c.Text()
		n, err := xmlschema.ParsePositiveInt(raw)
		if err != nil {
			return nil, xmlschema.ConversionError(c, "staff", raw, err)
		}
		fw.Staff.Set(n)
	}
	return fw, nil
}

// decodeDuration reads the required positive duration child of e.
func decodeDuration(e *etree.Element) (Divisions, error) {
	c := e.SelectElement("duration")
	if c == nil {
		return Divisions{}, xmlschema.StructureError(xmlschema.CodeRequiredElementMissing, e, "duration",
			"element %q is missing required child %q", e.Tag, "duration")
	}
	raw := c.Text()
	d, err := ParsePositiveDivisions(raw)
	if err != nil {
		return Divisions{}, xmlschema.ConversionError(c, "duration", raw, err)
	}
	return d, nil
}

func validateDuration(k Kind, d Divisions) error {
	if d.Sign() <= 0 {
		return fmt.Errorf("%s duration %s: %w", k, d, ErrNotPositive)
	}
	return nil
}

// claimTags returns a fragment skip function that claims the named child
// elements.
func claimTags(tags ...string) func(*etree.Element) bool {
	return func(c *etree.Element) bool {
		for _, t := range tags {
			if c.FullTag() == t {
				return true
			}
		}
		return false
	}
}

// claimAttrs returns a fragment skip function that claims the named
// attributes.
func claimAttrs(names ...string) func(etree.Attr) bool {
	return func(a etree.Attr) bool {
		full := xmlschema.AttrName(a.Space, a.Key)
		for _, n := range names {
			if full == n {
				return true
			}
		}
		return false
	}
}
