package text_test

import (
	"context"
	"fmt"
	"strings"

	"github.com/walteh/patchrc/pkg/text"
)

func ExampleLiteralEditor_ApplyRules() {
	editor := text.NewLiteralEditor()

	rules := []text.EditRule{
		{Name: "greeting", Marker: "Hello", Replacement: "Hi", Guard: "Hi "},
		{Name: "farewell", Marker: "Goodbye", Replacement: "Bye"},
	}

	result, err := editor.ApplyRules(context.Background(), strings.NewReader("Hello World!"), rules)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Printf("Modified: %s\n", result.ModifiedContent)
	for _, rr := range result.Rules {
		fmt.Printf("%s: %s\n", rr.Rule, rr.Outcome)
	}

	// Output:
	// Modified: Hi World!
	// greeting: applied
	// farewell: missed
}
