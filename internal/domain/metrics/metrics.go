// Package metrics implements the portal's health metrics calculator: BMI,
// basal metabolic rate, daily energy expenditure and a calorie target for a
// weekly weight-loss goal.
package metrics

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidInput = errors.New("invalid input")

type Units string

const (
	UnitsMetric   Units = "metric"
	UnitsImperial Units = "imperial"
)

type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

type Activity string

const (
	ActivitySedentary  Activity = "sedentary"
	ActivityLight      Activity = "light"
	ActivityModerate   Activity = "moderate"
	ActivityActive     Activity = "active"
	ActivityVeryActive Activity = "very_active"
)

var activityMultipliers = map[Activity]float64{
	ActivitySedentary:  1.2,
	ActivityLight:      1.375,
	ActivityModerate:   1.55,
	ActivityActive:     1.725,
	ActivityVeryActive: 1.9,
}

type Category string

const (
	CategoryUnderweight Category = "underweight"
	CategoryNormal      Category = "normal"
	CategoryOverweight  Category = "overweight"
	CategoryObese       Category = "obese"
)

const (
	kgPerLb        = 0.45359237
	cmPerIn        = 2.54
	kcalPerKgFat   = 7700.0
	MinDailyTarget = 1200
)

// BMIMetric computes kg/m².
func BMIMetric(weightKg, heightCm float64) float64 {
	m := heightCm / 100
	return weightKg / (m * m)
}

// BMIImperial computes 703·lb/in².
func BMIImperial(weightLb, heightIn float64) float64 {
	return 703 * weightLb / (heightIn * heightIn)
}

func Categorize(bmi float64) Category {
	switch {
	case bmi < 18.5:
		return CategoryUnderweight
	case bmi < 25:
		return CategoryNormal
	case bmi < 30:
		return CategoryOverweight
	default:
		return CategoryObese
	}
}

// BMR is the Mifflin-St Jeor resting energy expenditure in kcal/day.
func BMR(weightKg, heightCm float64, age int, sex Sex) float64 {
	base := 10*weightKg + 6.25*heightCm - 5*float64(age)
	if sex == SexFemale {
		return base - 161
	}
	return base + 5
}

func TDEE(bmr float64, activity Activity) (float64, error) {
	mult, ok := activityMultipliers[activity]
	if !ok {
		return 0, fmt.Errorf("%w: unknown activity level %q", ErrInvalidInput, activity)
	}
	return bmr * mult, nil
}

// CalorieTarget subtracts the daily deficit for weeklyLossKg from tdee. The
// result never goes below MinDailyTarget; floored reports when it was raised.
func CalorieTarget(tdee, weeklyLossKg float64) (target float64, floored bool) {
	target = tdee - weeklyLossKg*kcalPerKgFat/7
	if target < MinDailyTarget {
		return MinDailyTarget, true
	}
	return target, false
}

// Input is one calculator request. Weight, height and weekly loss are in
// kg/cm/kg-per-week for metric units and lb/in/lb-per-week for imperial.
type Input struct {
	Units          Units    `json:"units"`
	Weight         float64  `json:"weight"`
	Height         float64  `json:"height"`
	Age            int      `json:"age"`
	Sex            Sex      `json:"sex"`
	Activity       Activity `json:"activity"`
	WeeklyLossGoal float64  `json:"weekly_loss_goal"`
}

type Result struct {
	BMI                float64  `json:"bmi"`
	Category           Category `json:"category"`
	BMR                int      `json:"bmr"`
	TDEE               int      `json:"tdee"`
	DailyCalorieTarget int      `json:"daily_calorie_target"`
	TargetFloored      bool     `json:"target_floored"`
}

// normalized returns the input in metric units.
func (in Input) normalized() (kg, cm, lossKg float64, err error) {
	switch in.Units {
	case UnitsMetric, "":
		kg, cm, lossKg = in.Weight, in.Height, in.WeeklyLossGoal
	case UnitsImperial:
		kg, cm, lossKg = in.Weight*kgPerLb, in.Height*cmPerIn, in.WeeklyLossGoal*kgPerLb
	default:
		return 0, 0, 0, fmt.Errorf("%w: unknown units %q", ErrInvalidInput, in.Units)
	}
	return kg, cm, lossKg, nil
}

func (in Input) Validate() error {
	kg, cm, lossKg, err := in.normalized()
	if err != nil {
		return err
	}
	switch {
	case kg < 20 || kg > 400:
		return fmt.Errorf("%w: weight out of range", ErrInvalidInput)
	case cm < 100 || cm > 250:
		return fmt.Errorf("%w: height out of range", ErrInvalidInput)
	case in.Age < 18 || in.Age > 100:
		return fmt.Errorf("%w: age must be between 18 and 100", ErrInvalidInput)
	case in.Sex != SexMale && in.Sex != SexFemale:
		return fmt.Errorf("%w: sex must be male or female", ErrInvalidInput)
	case lossKg < 0 || lossKg > 1:
		return fmt.Errorf("%w: weekly loss goal must be between 0 and 1 kg (2.2 lb)", ErrInvalidInput)
	}
	if _, ok := activityMultipliers[in.Activity]; !ok {
		return fmt.Errorf("%w: unknown activity level %q", ErrInvalidInput, in.Activity)
	}
	return nil
}

func Calculate(in Input) (Result, error) {
	if err := in.Validate(); err != nil {
		return Result{}, err
	}
	kg, cm, lossKg, _ := in.normalized()

	bmi := BMIMetric(kg, cm)
	if in.Units == UnitsImperial {
		bmi = BMIImperial(in.Weight, in.Height)
	}
	bmr := BMR(kg, cm, in.Age, in.Sex)
	tdee, err := TDEE(bmr, in.Activity)
	if err != nil {
		return Result{}, err
	}
	target, floored := CalorieTarget(tdee, lossKg)

	return Result{
		BMI:                math.Round(bmi*10) / 10,
		Category:           Categorize(bmi),
		BMR:                int(math.Round(bmr)),
		TDEE:               int(math.Round(tdee)),
		DailyCalorieTarget: int(math.Round(target)),
		TargetFloored:      floored,
	}, nil
}
