package suites

import "github.com/ormasoftchile/labcheck/pkg/expect"

// errorPattern accepts any error message; the wording is not graded.
const errorPattern = `error:.+`

const sandwichPattern = `Your order.? A {} sandwich on {} with {}.?`

// Sandwich checks a program that takes meat, bread and condiment
// arguments and prints the order.
func Sandwich() []expect.TestCase {
	var cases []expect.TestCase
	for _, args := range [][]string{
		{},
		{"ham"},
		{"ham", "rye"},
		{"ham", "rye", "tomato", "lettuce"},
	} {
		cases = append(cases, expect.TestCase{
			Kind:            expect.ErrorCase,
			Arguments:       args,
			ExpectedPattern: errorPattern,
			ExpectedText:    "error: you must supply three arguments",
		})
	}
	for _, args := range [][]string{
		{"ham", "rye", "mayo"},
		{"tuna", "wheat", "mustard"},
		{"roast beef", "kaiser roll", "horse radish and mayo"},
		{"salami", "white", "cheddar"},
	} {
		cases = append(cases, expect.TestCase{
			Kind:            expect.SuccessCase,
			Arguments:       args,
			ExpectedPattern: sandwichPattern,
			ExpectedText:    "Your order:\nA {} sandwich on {} with {}.",
		})
	}
	return cases
}

// Blackjack checks a program that scores a two-card hand given as
// arguments. An ace counts as 11 unless that busts the hand.
func Blackjack() []expect.TestCase {
	var cases []expect.TestCase
	for _, args := range [][]string{
		{""},
		{"A"},
		{"A", "A", "A"},
	} {
		cases = append(cases, expect.TestCase{
			Kind:            expect.ErrorCase,
			Arguments:       args,
			ExpectedPattern: errorPattern,
			ExpectedText:    "error: you must supply two arguments",
		})
	}
	for _, args := range [][]string{
		{"X", "A"},
		{"A", "X"},
		{"X", "X"},
	} {
		cases = append(cases, expect.TestCase{
			Kind:            expect.ErrorCase,
			Arguments:       args,
			ExpectedPattern: errorPattern,
			ExpectedText:    "error: invalid card name",
		})
	}
	for _, hand := range []struct {
		cards []string
		score int
	}{
		{[]string{"2", "3"}, 5},
		{[]string{"5", "Q"}, 15},
		{[]string{"K", "J"}, 20},
		{[]string{"A", "10"}, 21},
		{[]string{"5", "A"}, 16},
		{[]string{"A", "A"}, 12},
	} {
		score := hand.score
		cases = append(cases, expect.TestCase{
			Kind:            expect.SuccessCase,
			Arguments:       hand.cards,
			ExpectedPattern: `(\d+)`,
			ExpectedValue:   &score,
		})
	}
	return cases
}
