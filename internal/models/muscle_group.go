package models

import (
	"fmt"
	"strings"
)

// MuscleGroup is one of the fixed training muscle groups.
type MuscleGroup string

const (
	MuscleChest     MuscleGroup = "chest"
	MuscleBack      MuscleGroup = "back"
	MuscleLegs      MuscleGroup = "legs"
	MuscleShoulders MuscleGroup = "shoulders"
	MuscleArms      MuscleGroup = "arms"
)

// MuscleGroups lists every group in reporting order.
var MuscleGroups = []MuscleGroup{MuscleChest, MuscleBack, MuscleLegs, MuscleShoulders, MuscleArms}

// ParseMuscleGroup validates a muscle group name.
func ParseMuscleGroup(raw string) (MuscleGroup, error) {
	g := MuscleGroup(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range MuscleGroups {
		if g == known {
			return g, nil
		}
	}
	return "", fmt.Errorf("unknown muscle group %q", raw)
}

// exerciseMuscleGroups maps normalized exercise identifiers to the muscle
// groups they train. Compound lifts carry more than one tag.
var exerciseMuscleGroups = map[string][]MuscleGroup{
	// Chest
	"bench_press":            {MuscleChest},
	"incline_bench_press":    {MuscleChest},
	"decline_bench_press":    {MuscleChest},
	"dumbbell_press":         {MuscleChest},
	"incline_dumbbell_press": {MuscleChest},
	"chest_fly":              {MuscleChest},
	"cable_crossover":        {MuscleChest},
	"push_up":                {MuscleChest},
	"dips":                   {MuscleChest, MuscleArms},

	// Back
	"deadlift":     {MuscleBack, MuscleLegs},
	"pull_up":      {MuscleBack},
	"chin_up":      {MuscleBack, MuscleArms},
	"barbell_row":  {MuscleBack},
	"dumbbell_row": {MuscleBack},
	"lat_pulldown": {MuscleBack},
	"seated_row":   {MuscleBack},
	"t_bar_row":    {MuscleBack},
	"face_pull":    {MuscleBack, MuscleShoulders},

	// Legs
	"squat":                 {MuscleLegs},
	"back_squat":            {MuscleLegs},
	"front_squat":           {MuscleLegs},
	"hack_squat":            {MuscleLegs},
	"leg_press":             {MuscleLegs},
	"lunge":                 {MuscleLegs},
	"bulgarian_split_squat": {MuscleLegs},
	"romanian_deadlift":     {MuscleLegs, MuscleBack},
	"leg_curl":              {MuscleLegs},
	"leg_extension":         {MuscleLegs},
	"hip_thrust":            {MuscleLegs},
	"calf_raise":            {MuscleLegs},

	// Shoulders
	"overhead_press": {MuscleShoulders},
	"military_press": {MuscleShoulders},
	"arnold_press":   {MuscleShoulders},
	"lateral_raise":  {MuscleShoulders},
	"front_raise":    {MuscleShoulders},
	"rear_delt_fly":  {MuscleShoulders},
	"upright_row":    {MuscleShoulders},
	"shrug":          {MuscleShoulders},

	// Arms
	"bicep_curl":             {MuscleArms},
	"hammer_curl":            {MuscleArms},
	"preacher_curl":          {MuscleArms},
	"tricep_extension":       {MuscleArms},
	"tricep_pushdown":        {MuscleArms},
	"skull_crusher":          {MuscleArms},
	"close_grip_bench_press": {MuscleArms, MuscleChest},
}

// NormalizeExerciseID lowercases an exercise identifier and folds spaces and
// hyphens to underscores, so "Bench Press" and "bench-press" share a key.
func NormalizeExerciseID(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.NewReplacer(" ", "_", "-", "_").Replace(s)
	return s
}

// MuscleGroupsForExercise returns the muscle groups an exercise trains and
// whether the exercise is known. Unknown exercises train no group.
func MuscleGroupsForExercise(exerciseID string) ([]MuscleGroup, bool) {
	groups, ok := exerciseMuscleGroups[NormalizeExerciseID(exerciseID)]
	return groups, ok
}

// Trains reports whether the exercise counts toward the given group.
func Trains(exerciseID string, group MuscleGroup) bool {
	groups, _ := MuscleGroupsForExercise(exerciseID)
	for _, g := range groups {
		if g == group {
			return true
		}
	}
	return false
}

// ExercisesFor returns the identifiers tagged with a group, unsorted.
func ExercisesFor(group MuscleGroup) []string {
	var out []string
	for id, groups := range exerciseMuscleGroups {
		for _, g := range groups {
			if g == group {
				out = append(out, id)
				break
			}
		}
	}
	return out
}
