/*
Package log provides the engine's structured logging, built on zerolog.

A single global Logger is configured once via Init and handed out with
component-scoped children: WithComponent, WithWorker, WithStorage, and
WithEpoch attach the corresponding field to every subsequent entry.
*/
package log
