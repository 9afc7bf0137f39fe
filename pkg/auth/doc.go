// Package auth verifies stack users and issues the bearer tokens the
// control API expects.
//
// Passwords are bcrypt hashes stored on the Stack. Tokens are HS256 JWTs
// whose subject is the user id, signed with the jwt_key secret. A failed
// login returns ErrUnauthorized whether the username or the password was
// wrong.
package auth
