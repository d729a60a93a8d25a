// Package cli is the interactive terminal front end of the staffdesk client.
//
// An App owns the local database, the session store and the services. Each
// REPL command maps onto a client path ("/", "/leave", "/user/{id}/edit"
// and so on) that is checked by the route gate before anything is fetched,
// so a guest is sent to the login prompt and a plain user cannot open admin
// views. Errors from commands are turned into notices by App.Report.
package cli
