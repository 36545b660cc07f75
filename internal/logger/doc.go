// Package logger provides the structured Zap logger shared by all backend
// components.
//
// Call sites pass a message, an optional error, and optional field maps:
//
//	log.Info("document indexed", nil, map[string]interface{}{
//	    "document_id": docID,
//	    "chunks":      n,
//	})
//
// The logger is wired through fx; packages that need logging declare a
// *logger.Logger dependency in their constructors.
package logger
