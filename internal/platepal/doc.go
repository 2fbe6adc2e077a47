// Package platepal holds the client side of PlatePal: the search form
// state, prompt assembly, the proxy client, response parsing, sorting and
// the geolocation/reverse-geocoding flow.
//
// A Session is the unit of state. It is safe for concurrent use, and it
// never holds its lock across network calls.
package platepal
