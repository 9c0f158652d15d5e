// Package session owns the signed-in identity of a browser client.
//
// A Manager is created once per process and carries the collaborators:
// token storage, the external auth API, the toast sink and navigation.
// Manager.Open derives a Session from the persisted credential token; the
// Session then serves login, registration, logout and the role predicates
// to every consumer that renders for that client.
//
// Claims are decoded on the client side. Unless a verification secret is
// configured the signature is not checked, so a decoded role only decides
// what is rendered. The event service re-verifies the token on every call.
package session
