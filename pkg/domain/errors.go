package domain

import "errors"

// ErrStoreNotInitialized means the persisted context store holds no
// documents. Requests cannot recover from it; the operator has to run the
// offline build step.
var ErrStoreNotInitialized = errors.New("context store is empty - run with -generate to build the index first")

// ErrLastMessageNotFromUser rejects requests whose final message is missing
// or not a user turn.
var ErrLastMessageNotFromUser = errors.New("messages are required in the request body and the last message must be from the user")
