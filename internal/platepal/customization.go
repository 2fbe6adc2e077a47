package platepal

import (
	"fmt"
	"strings"
)

// Macro is one of the tracked macronutrients.
type Macro string

const (
	MacroCarbs   Macro = "carbs"
	MacroProtein Macro = "protein"
	MacroFat     Macro = "fat"
)

// Macros lists the macronutrients in prompt order.
var Macros = []Macro{MacroCarbs, MacroProtein, MacroFat}

// MacroIntensity is the user's preference for a macronutrient. The zero
// value means unset.
type MacroIntensity string

const (
	IntensityUnset    MacroIntensity = ""
	IntensityMinimize MacroIntensity = "minimize"
	IntensityBalanced MacroIntensity = "balanced"
	IntensityMaximize MacroIntensity = "maximize"
)

// FoodGroup is one of the food groups a user can rank.
type FoodGroup string

const (
	FoodGroupVegetables FoodGroup = "vegetables"
	FoodGroupFruits     FoodGroup = "fruits"
	FoodGroupGrains     FoodGroup = "grains"
	FoodGroupDairy      FoodGroup = "dairy"
	FoodGroupMeat       FoodGroup = "meat"
	FoodGroupSeafood    FoodGroup = "seafood"
)

// FoodGroups lists the food groups in prompt order.
var FoodGroups = []FoodGroup{
	FoodGroupVegetables,
	FoodGroupFruits,
	FoodGroupGrains,
	FoodGroupDairy,
	FoodGroupMeat,
	FoodGroupSeafood,
}

// Priority ranks a food group. The zero value means unset.
type Priority string

const (
	PriorityUnset      Priority = ""
	PriorityAvoid      Priority = "avoid"
	PriorityNeutral    Priority = "neutral"
	PriorityPrioritize Priority = "prioritize"
)

// ParseMacro accepts a macronutrient name in any case.
func ParseMacro(s string) (Macro, error) {
	m := Macro(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Macros {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown macro %q", s)
}

// ParseMacroIntensity accepts minimize, balanced, maximize, or unset/empty.
func ParseMacroIntensity(s string) (MacroIntensity, error) {
	switch v := MacroIntensity(strings.ToLower(strings.TrimSpace(s))); v {
	case IntensityMinimize, IntensityBalanced, IntensityMaximize:
		return v, nil
	case IntensityUnset, "unset":
		return IntensityUnset, nil
	}
	return "", fmt.Errorf("unknown macro intensity %q", s)
}

// ParseFoodGroup accepts a food group name in any case.
func ParseFoodGroup(s string) (FoodGroup, error) {
	g := FoodGroup(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range FoodGroups {
		if g == known {
			return g, nil
		}
	}
	return "", fmt.Errorf("unknown food group %q", s)
}

// ParsePriority accepts avoid, neutral, prioritize, or unset/empty.
func ParsePriority(s string) (Priority, error) {
	switch v := Priority(strings.ToLower(strings.TrimSpace(s))); v {
	case PriorityAvoid, PriorityNeutral, PriorityPrioritize:
		return v, nil
	case PriorityUnset, "unset":
		return PriorityUnset, nil
	}
	return "", fmt.Errorf("unknown food group priority %q", s)
}

// CalorieRange bounds calories per meal. A zero bound is open.
type CalorieRange struct {
	Min int
	Max int
}

// IsSet reports whether either bound is present.
func (r CalorieRange) IsSet() bool {
	return r.Min > 0 || r.Max > 0
}

// Validate rejects negative bounds and inverted ranges.
func (r CalorieRange) Validate() error {
	if r.Min < 0 || r.Max < 0 {
		return fmt.Errorf("calorie bounds must not be negative")
	}
	if r.Min > 0 && r.Max > 0 && r.Min > r.Max {
		return fmt.Errorf("calorie minimum %d exceeds maximum %d", r.Min, r.Max)
	}
	return nil
}

func (r CalorieRange) String() string {
	switch {
	case r.Min > 0 && r.Max > 0:
		return fmt.Sprintf("%d-%d calories per meal", r.Min, r.Max)
	case r.Min > 0:
		return fmt.Sprintf("at least %d calories per meal", r.Min)
	case r.Max > 0:
		return fmt.Sprintf("at most %d calories per meal", r.Max)
	}
	return ""
}

// Customizations is the extended preference set.
type Customizations struct {
	Diet       string
	Calories   CalorieRange
	Macros     map[Macro]MacroIntensity
	FoodGroups map[FoodGroup]Priority
}

// HasSignal reports whether any customization carries a value.
func (c Customizations) HasSignal() bool {
	return len(c.Lines()) > 0
}

// Lines renders the set customizations in fixed order: diet, calories,
// macros, then food groups.
func (c Customizations) Lines() []string {
	var lines []string
	if diet := strings.TrimSpace(c.Diet); diet != "" {
		lines = append(lines, "Diet: "+diet)
	}
	if c.Calories.IsSet() {
		lines = append(lines, "Calories: "+c.Calories.String())
	}
	for _, m := range Macros {
		if v := c.Macros[m]; v != IntensityUnset {
			lines = append(lines, fmt.Sprintf("%s: %s", capitalize(string(m)), v))
		}
	}
	for _, g := range FoodGroups {
		if v := c.FoodGroups[g]; v != PriorityUnset {
			lines = append(lines, fmt.Sprintf("%s: %s", capitalize(string(g)), v))
		}
	}
	return lines
}

// clone copies the maps so a snapshot survives later edits.
func (c Customizations) clone() Customizations {
	out := c
	if c.Macros != nil {
		out.Macros = make(map[Macro]MacroIntensity, len(c.Macros))
		for k, v := range c.Macros {
			out.Macros[k] = v
		}
	}
	if c.FoodGroups != nil {
		out.FoodGroups = make(map[FoodGroup]Priority, len(c.FoodGroups))
		for k, v := range c.FoodGroups {
			out.FoodGroups[k] = v
		}
	}
	return out
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
