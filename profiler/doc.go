/*
Package profiler collects the queries logged while a request was handled into a Profile,
and serves recent profiles as JSON.

The Middleware gives each request a token, returned in the X-Debug-Token response header.
Once the request has been handled the query log is drained into a profile stored under that
token, which can be fetched from /_profiler/:token once Register has mounted the routes.

The query log is shared by the whole process, so when requests are handled concurrently a
profile holds every query that completed the log since the last collection.
*/
package profiler
