/*
Package mongoex contains a variety of tools for working safely with MongoDB.

There are tools for:
- connecting, with TLS and without leaking credentials
- observability (both for queries and connection pool info)
- health checks
- query logging, through the instrumented Client, Database and Collection types

The instrumented types wrap the driver by composition. A Collection holds anything that
satisfies CollectionAPI (a *mongo.Collection does) and offers exactly the same methods,
so it can be substituted wherever the driver collection was used:

	client := mongoex.NewClient("primary", mongoex.DriverClient(mc), logger)
	books := client.Database("library").Collection("books")
	res, err := books.InsertOne(ctx, bson.M{"name": "Dune"})

Every call records one querylog.Event before the driver is called, and completes it
once the driver returns successfully. Driver errors are returned untouched.
*/
package mongoex
