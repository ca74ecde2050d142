// Package auth authenticates the single author of a blogbox instance.
//
// There is exactly one identity that can ever be registered: the one whose
// username matches the ADMIN_USERNAME secret. Anyone else is turned away
// before the password is even hashed.
//
// Passwords are hashed with bcrypt and never leave this package in plain
// text. A successful login produces a session token, an HS256 signed JWT
// that carries the identity id and email and expires one hour after it was
// issued.
//
// Tokens are stateless, the server keeps no session table. This has two
// consequences that are accepted:
//
//   - a token cannot be revoked, logging out only removes the cookie from
//     the client, a copied token stays valid until it expires;
//   - changing JWT_SECRET invalidates every outstanding token, users simply
//     have to login again.
package auth
