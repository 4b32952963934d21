// Package recruiting implements the two generation operations exposed to
// clients: generating an HTML job posting and generating a structured
// interview kit. It validates inputs, renders prompts from templates, calls
// the generation client, and shapes the results.
package recruiting
