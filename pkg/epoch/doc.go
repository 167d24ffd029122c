/*
Package epoch drives the engine's global epoch state machine: the
monotonically advancing current epoch, the grace epoch one behind it,
and the durable epoch that trails both until every logger has flushed.

The periodic advance loop is a ticker-driven goroutine: time.NewTicker
plus a select over the ticker channel and a stop channel.
*/
package epoch
