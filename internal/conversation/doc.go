// Package conversation keeps chat sessions and the memories extracted from
// them.
//
// # Architecture
//
// The main components are:
//   - Manager: session lifecycle, message recording and memory retrieval
//   - extraction.Extractor: first-person patterns turned into memories
//   - Store: the sqlite tables behind sessions, messages, memories and
//     visitor profiles
//
// # Memories
//
// Every user message is scanned for preferences, goals, facts and
// achievements. Each match is scored for importance; matches below the
// configured minimum are dropped and a per-session cap evicts the least
// important, oldest memory. Facts such as a name or employer are also merged
// into the visitor's profile, which outlives any single session.
//
// # Usage
//
//	mgr, err := conversation.NewManager(cfg.Memory, store, logger,
//	    conversation.WithLLM(client),
//	)
//	session, err := mgr.StartSession(ctx, visitorID, "")
//	_, _, err = mgr.AddMessage(ctx, session.ID, storage.RoleUser, "I'm hiring a Go engineer")
//	cc, err := mgr.BuildContext(ctx, session.ID, "what does she know about Go?")
package conversation
