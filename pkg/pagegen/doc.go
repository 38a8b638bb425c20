/*
Package pagegen produces static HTML landing pages from a template and a CSV
data file. Every data row yields one page: the configured {{TOKEN}}
placeholders in the template are replaced with the row's values (or with a
value derived from them, such as a base fare), and the result is written to a
file whose name is built from the row's slug columns.

Substitution is literal text replacement applied in binding order. There is
no escaping, no conditionals and no loops; placeholders that are not bound
pass through to the output unchanged.

Two presets cover the common layouts, "route" (point-to-point pages with a
computed base fare) and "destination" (airport-to-destination pages with one
fare column per vehicle class). Either can be overridden field by field.
*/
package pagegen
