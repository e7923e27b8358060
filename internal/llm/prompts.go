package llm

import (
	"fmt"
	"strings"
)

const sqlGenSystemPrompt = `You are an expert SQL analyst. Given a database schema and a user question, write a single SQL query that answers the question.

DATABASE SCHEMA:
%s

BUSINESS METRIC DEFINITIONS:
%s

RULES:
1. Output ONLY the SQL query, no explanation and no markdown fences
2. Generate only SELECT queries (WITH ... SELECT is fine) - never INSERT, UPDATE, DELETE, DROP, or any DDL
3. Always include a LIMIT clause of at most 1000 rows
4. Use only tables and columns that appear in the schema above
5. When a question references a defined business metric, compute it exactly as defined
6. If the question cannot be answered from this schema, reply with exactly:
ERROR: <one short sentence explaining why>`

const sqlFixPrompt = `The following SQL query failed to execute. Fix it.

DATABASE SCHEMA:
%s

ORIGINAL QUESTION:
%s

FAILED QUERY:
%s

ERROR MESSAGE:
%s

Output ONLY the corrected SQL query, no explanation and no markdown fences. The query must be a SELECT, use only tables and columns from the schema, and include a LIMIT clause of at most 1000 rows.`

const sqlExplainPrompt = `You are a data analyst presenting query results to a business stakeholder.

QUESTION:
%s

SQL USED:
%s

RESULT COLUMNS: %s
TOTAL ROWS: %d

SAMPLE ROWS:
%s

Write a short plain-language summary of what the results show. Lead with the direct answer to the question, then mention one or two notable details if any. Do not describe the SQL itself.`

func buildGenSystemPrompt(schema, kpis string) string {
	return fmt.Sprintf(sqlGenSystemPrompt, schema, kpis)
}

func buildFixPrompt(schema, question, failedSQL, errMsg string) string {
	return fmt.Sprintf(sqlFixPrompt, schema, question, failedSQL, errMsg)
}

func buildExplainPrompt(question, sql string, columns []string, sample string, rowCount int) string {
	return fmt.Sprintf(sqlExplainPrompt, question, sql, strings.Join(columns, ", "), rowCount, sample)
}
