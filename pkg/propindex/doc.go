/*
Package propindex defines the property-index service's updateIndexes
hook and the lazy batch view commit submits: a view over the commit's
property and node commands that the indexing service only resolves on
demand, so population jobs for brand-new indexes don't pay for property
values they'll never read.
*/
package propindex
