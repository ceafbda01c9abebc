package llm

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/leapstack-labs/csvql/internal/schema"
)

const systemPrompt = "You are an AI that outputs only SQL queries. " +
	"Return only valid SQL statements, with no explanations or comments."

// sqlPattern matches the first recognizable SQL statement in a model
// response, discarding any commentary the model wrapped around it.
var sqlPattern = regexp.MustCompile(`(?is)(SELECT|INSERT|UPDATE|DELETE|CREATE|DROP|WITH)\b.*`)

// ExtractSQL pulls the first SQL statement out of a model response.
// When no statement keyword is found the trimmed response is returned
// as-is and left for the operator to judge.
func ExtractSQL(response string) string {
	// Strip markdown fences the model may add despite instructions.
	response = strings.ReplaceAll(response, "```sql", "")
	response = strings.ReplaceAll(response, "```", "")
	if m := sqlPattern.FindString(response); m != "" {
		return strings.TrimSpace(m)
	}
	return strings.TrimSpace(response)
}

// FlattenSchemas renders every table's schema as a single prompt line:
// "people(id INTEGER, score REAL); orders(...)".
func FlattenSchemas(schemas map[string]schema.Schema, order []string) string {
	parts := make([]string, 0, len(order))
	for _, table := range order {
		parts = append(parts, fmt.Sprintf("%s(%s)", table, schemas[table]))
	}
	return strings.Join(parts, "; ")
}

// GenerateSQL asks the model for a SQL statement answering the request
// against the given schemas and extracts it from the response.
func (c *Client) GenerateSQL(ctx context.Context, schemas map[string]schema.Schema, order []string, request string) (string, error) {
	user := fmt.Sprintf("Database Schema: %s. User Request: %s", FlattenSchemas(schemas, order), request)
	resp, err := c.Complete(ctx, systemPrompt, user)
	if err != nil {
		return "", err
	}
	return ExtractSQL(resp), nil
}
