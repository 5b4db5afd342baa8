// Package extract turns search results into spirit records.
//
// A result is mined in order of data quality: structured product data from the
// page map, then Open Graph and product metatags, then the result title, and
// finally up to five product mentions in the snippet. Each record is then
// classified (type, sub-type, category, origin) and scored for completeness.
package extract
