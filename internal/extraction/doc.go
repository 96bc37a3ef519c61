// Package extraction finds remembered facts in chat messages and technology
// and skill tags in free text.
//
// Memory extraction is pattern based: each sentence of a user message is
// checked against first-person patterns ("I prefer", "I want to", "my name
// is", "I built", ...). Matches become candidates with a heuristic importance
// score. Tag extraction matches a dictionary of technologies and skills on
// word boundaries.
package extraction
