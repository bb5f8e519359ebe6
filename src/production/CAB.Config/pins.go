package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// NotWiredSentinel is the value the firmware uses for a camera line that is not connected.
const NotWiredSentinel = -1

// MaxGPIO is the highest GPIO number on the ESP32.
const MaxGPIO = 39

// PinRole names one camera signal line.
type PinRole int

const (
	RolePWDN PinRole = iota
	RoleRESET
	RoleXCLK
	RoleSIOD
	RoleSIOC
	RoleY9
	RoleY8
	RoleY7
	RoleY6
	RoleY5
	RoleY4
	RoleY3
	RoleY2
	RoleVSYNC
	RoleHREF
	RolePCLK

	pinRoleCount
)

var pinRoleNames = [pinRoleCount]string{
	RolePWDN:  "PWDN",
	RoleRESET: "RESET",
	RoleXCLK:  "XCLK",
	RoleSIOD:  "SIOD",
	RoleSIOC:  "SIOC",
	RoleY9:    "Y9",
	RoleY8:    "Y8",
	RoleY7:    "Y7",
	RoleY6:    "Y6",
	RoleY5:    "Y5",
	RoleY4:    "Y4",
	RoleY3:    "Y3",
	RoleY2:    "Y2",
	RoleVSYNC: "VSYNC",
	RoleHREF:  "HREF",
	RolePCLK:  "PCLK",
}

// PinRoles returns every camera signal role in firmware order.
func PinRoles() []PinRole {
	roles := make([]PinRole, 0, pinRoleCount)
	for r := PinRole(0); r < pinRoleCount; r++ {
		roles = append(roles, r)
	}
	return roles
}

func (r PinRole) String() string {
	if !r.Valid() {
		return fmt.Sprintf("PinRole(%d)", int(r))
	}
	return pinRoleNames[r]
}

// Valid reports whether r is one of the sixteen camera roles.
func (r PinRole) Valid() bool {
	return r >= 0 && r < pinRoleCount
}

// Define returns the firmware macro name, e.g. PWDN_GPIO_NUM.
func (r PinRole) Define() string {
	return r.String() + "_GPIO_NUM"
}

// ParsePinRole accepts "pwdn", "PWDN" or "PWDN_GPIO_NUM".
func ParsePinRole(name string) (PinRole, error) {
	n := strings.ToUpper(strings.TrimSpace(name))
	n = strings.TrimSuffix(n, "_GPIO_NUM")
	for r, s := range pinRoleNames {
		if s == n {
			return PinRole(r), nil
		}
	}
	return 0, fmt.Errorf("unknown pin role %q", name)
}

// GPIO is an optional pin number. The zero value is NotWired.
type GPIO struct {
	num   int
	wired bool
}

// NotWired marks a role that has no physical connection on this board.
var NotWired = GPIO{}

// Pin returns a wired GPIO.
func Pin(n int) GPIO {
	return GPIO{num: n, wired: true}
}

// GPIOFromLegacy converts a firmware value, where -1 means not wired.
func GPIOFromLegacy(n int) GPIO {
	if n == NotWiredSentinel {
		return NotWired
	}
	return Pin(n)
}

// Number returns the pin number and whether the role is wired at all.
func (g GPIO) Number() (int, bool) {
	return g.num, g.wired
}

func (g GPIO) Wired() bool {
	return g.wired
}

// Legacy returns the firmware representation: the pin number, or -1 when not wired.
func (g GPIO) Legacy() int {
	if !g.wired {
		return NotWiredSentinel
	}
	return g.num
}

func (g GPIO) String() string {
	if !g.wired {
		return "not wired"
	}
	return "GPIO" + strconv.Itoa(g.num)
}

// PinAssignment maps every camera role to a GPIO. It is a value type; copies never alias.
type PinAssignment struct {
	pins [pinRoleCount]GPIO
}

// AIThinkerPins is the wiring of the AI-Thinker ESP32-CAM board.
func AIThinkerPins() PinAssignment {
	var p PinAssignment
	p.pins[RolePWDN] = Pin(32)
	p.pins[RoleRESET] = NotWired
	p.pins[RoleXCLK] = Pin(0)
	p.pins[RoleSIOD] = Pin(26)
	p.pins[RoleSIOC] = Pin(27)
	p.pins[RoleY9] = Pin(35)
	p.pins[RoleY8] = Pin(34)
	p.pins[RoleY7] = Pin(39)
	p.pins[RoleY6] = Pin(36)
	p.pins[RoleY5] = Pin(21)
	p.pins[RoleY4] = Pin(19)
	p.pins[RoleY3] = Pin(18)
	p.pins[RoleY2] = Pin(5)
	p.pins[RoleVSYNC] = Pin(25)
	p.pins[RoleHREF] = Pin(23)
	p.pins[RolePCLK] = Pin(22)
	return p
}

// Get returns the GPIO for role. Unknown roles are reported as NotWired.
func (p PinAssignment) Get(role PinRole) GPIO {
	if !role.Valid() {
		return NotWired
	}
	return p.pins[role]
}

// PinEntry is one row of the pin table.
type PinEntry struct {
	Role PinRole
	GPIO GPIO
}

// Entries lists the table in firmware order.
func (p PinAssignment) Entries() []PinEntry {
	out := make([]PinEntry, 0, pinRoleCount)
	for _, r := range PinRoles() {
		out = append(out, PinEntry{Role: r, GPIO: p.pins[r]})
	}
	return out
}

// PinCollision reports two roles wired to the same GPIO.
type PinCollision struct {
	GPIO  int
	Roles []PinRole
}

// Collisions returns every GPIO claimed by more than one wired role.
func (p PinAssignment) Collisions() []PinCollision {
	seen := make(map[int][]PinRole)
	var order []int
	for _, r := range PinRoles() {
		n, ok := p.pins[r].Number()
		if !ok {
			continue
		}
		if _, exists := seen[n]; !exists {
			order = append(order, n)
		}
		seen[n] = append(seen[n], r)
	}

	var out []PinCollision
	for _, n := range order {
		if len(seen[n]) > 1 {
			out = append(out, PinCollision{GPIO: n, Roles: seen[n]})
		}
	}
	return out
}

// pinsFromSettings builds the table from a role-name map, as found in YAML or env.
func pinsFromSettings(raw map[string]int) (PinAssignment, []error) {
	var (
		p        PinAssignment
		errs     []error
		assigned [pinRoleCount]bool
	)

	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		n := raw[name]
		role, err := ParsePinRole(name)
		if err != nil {
			errs = append(errs, &ConfigurationError{Field: "pins." + name, Value: strconv.Itoa(n), Reason: "unknown camera pin role"})
			continue
		}
		if assigned[role] {
			errs = append(errs, &ConfigurationError{Field: "pins." + name, Value: strconv.Itoa(n), Reason: "role " + role.String() + " is assigned more than once"})
			continue
		}
		assigned[role] = true
		if n != NotWiredSentinel && (n < 0 || n > MaxGPIO) {
			errs = append(errs, &ConfigurationError{
				Field:  "pins." + role.String(),
				Value:  strconv.Itoa(n),
				Reason: fmt.Sprintf("GPIO must be within 0-%d or %d for not wired", MaxGPIO, NotWiredSentinel),
			})
			continue
		}
		p.pins[role] = GPIOFromLegacy(n)
	}

	for _, r := range PinRoles() {
		if !assigned[r] {
			errs = append(errs, &ConfigurationError{Field: "pins." + r.String(), Reason: "no GPIO assigned; use -1 when the line is not wired"})
		}
	}

	for _, c := range p.Collisions() {
		names := make([]string, len(c.Roles))
		for i, r := range c.Roles {
			names[i] = r.String()
		}
		errs = append(errs, &ConfigurationError{
			Field:  "pins",
			Value:  strconv.Itoa(c.GPIO),
			Reason: "GPIO shared by " + strings.Join(names, ", "),
		})
	}

	return p, errs
}

// canonicalPins rewrites role keys to their canonical names so each role has a single entry.
// Keys that are not roles are kept for pinsFromSettings to report.
func canonicalPins(raw map[string]int) (map[string]int, []error) {
	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)

	var errs []error
	out := make(map[string]int, len(raw))
	from := make(map[string]string, len(raw))
	for _, name := range names {
		key := name
		if role, err := ParsePinRole(name); err == nil {
			key = role.String()
		}
		if prev, dup := from[key]; dup {
			errs = append(errs, &ConfigurationError{Field: "pins." + name, Value: strconv.Itoa(raw[name]), Reason: "same role as pins." + prev})
			continue
		}
		from[key] = name
		out[key] = raw[name]
	}
	return out, errs
}

// settingsFromPins is the inverse of pinsFromSettings.
func settingsFromPins(p PinAssignment) map[string]int {
	out := make(map[string]int, pinRoleCount)
	for _, e := range p.Entries() {
		out[e.Role.String()] = e.GPIO.Legacy()
	}
	return out
}
