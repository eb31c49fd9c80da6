package cli

import (
	"encoding/json"
	"fmt"
)

func printJSON(v any) error {
	marshalled, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(marshalled))
	return nil
}
