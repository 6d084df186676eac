/*
Package errors provides semantic error types for the recipe store.

Every failure the store can observe maps to one sentinel, checkable with the
standard errors.Is() function or the helpers in this package:

	var (
	    ErrNotFound        = errors.New("entity not found")
	    ErrInvalidInput    = errors.New("invalid input")
	    ErrConditionFailed = errors.New("condition check failed")
	    ErrUnknownKind     = errors.New("entity kind not in schema catalog")
	    ErrProvisioning    = errors.New("schema provisioning failed")
	    ErrBackend         = errors.New("backing store fault")
	)

The boolean store methods (Save, Delete, Retrieve, ListForPartition) fold all
of these into false, not-found or an empty slice. Their error-returning twins
(Put, Remove, Get, List) hand the typed error to callers that need to tell
"my data was invalid" apart from "the store is unavailable":

	if err := store.Put(ctx, recipe); err != nil {
	    switch {
	    case errors.IsValidationError(err):
	        // caller must fix the recipe
	    case errors.IsRetryable(err):
	        // transient backend fault, try again later
	    }
	}
*/
package errors
