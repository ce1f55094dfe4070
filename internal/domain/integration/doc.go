// Package integration contains the AM.net integration bounded context.
//
// AM.net is the association-management system of record for membership,
// dues, firms, peer-review billing and legislative contacts. This package
// defines the records exchanged with it and the ports the application
// layer talks to; the HTTP adapter lives in infrastructure/amnet.
//
// Key concepts:
//   - Person: the remote profile record identified by a Names ID
//   - PersonGateway, DuesGateway, LegislativeGateway, PeerReviewGateway,
//     ReferenceGateway: narrow ports, all implemented by one client
//   - SyncRecord: audit row written for each sync attempt
package integration
