// Package connectors holds the clients for remote conversion services.
// Each connector translates the driven Converter and DocumentLister
// ports into one service's API and maps its failures onto the domain
// error taxonomy.
package connectors
