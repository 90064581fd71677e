package tsconvert

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/tskit-dev/tsconvert/trees"
)

// VCFOptions control the VCF encoder.
type VCFOptions struct {
	// Ploidy groups consecutive samples into individuals of this many
	// genomes each. It must divide the sample count. Zero means 1.
	Ploidy int
	// Contig is the CHROM value and contig ID. Empty means "1".
	Contig string
}

// VCFEncoder returns an encoder writing the sites and genotypes of a
// tree sequence as VCF. Site positions are rounded to integers, which
// must leave them distinct. Each site's REF is its ancestral state and
// the ALT alleles are the derived states in order of first appearance;
// genotypes come from applying the site's mutations, in table order,
// to the tree covering the site.
func VCFEncoder(opts VCFOptions) Encoder {
	return func(ts *trees.TreeSequence, w io.Writer) error {
		ploidy := opts.Ploidy
		if ploidy == 0 {
			ploidy = 1
		}
		if ploidy < 1 {
			return fmt.Errorf("vcf: ploidy must be positive, got %d", ploidy)
		}
		if ts.NumSamples()%ploidy != 0 {
			return fmt.Errorf("vcf: ploidy %d does not divide the %d samples",
				ploidy, ts.NumSamples())
		}
		contig := opts.Contig
		if contig == "" {
			contig = "1"
		}
		numIndividuals := ts.NumSamples() / ploidy

		positions := make([]int64, ts.NumSites())
		used := make(map[int64]int)
		for i := range positions {
			pos := int64(math.Round(ts.Site(i).Position))
			if prev, ok := used[pos]; ok {
				return fmt.Errorf("vcf: sites %d and %d both round to position %d", prev, i, pos)
			}
			used[pos] = i
			positions[i] = pos
		}

		bw := bufio.NewWriter(w)
		fmt.Fprintln(bw, "##fileformat=VCFv4.2")
		fmt.Fprintln(bw, "##source=tsconvert")
		fmt.Fprintln(bw, `##FILTER=<ID=PASS,Description="All filters passed">`)
		fmt.Fprintf(bw, "##contig=<ID=%s,length=%d>\n", contig, int64(math.Ceil(ts.SequenceLength())))
		fmt.Fprintln(bw, `##FORMAT=<ID=GT,Number=1,Type=String,Description="Genotype">`)
		header := []string{"#CHROM", "POS", "ID", "REF", "ALT", "QUAL", "FILTER", "INFO", "FORMAT"}
		for k := 0; k < numIndividuals; k++ {
			header = append(header, "tsk_"+strconv.Itoa(k))
		}
		fmt.Fprintln(bw, strings.Join(header, "\t"))

		// slot[u] is the genotype column position of sample node u.
		slot := make(map[int]int, ts.NumSamples())
		for i, s := range ts.Samples() {
			slot[s] = i
		}
		genotypes := make([]int, ts.NumSamples())

		site := 0
		mutation := 0
		tree := ts.NewTree()
		for tree.Next() && site < ts.NumSites() {
			_, right := tree.Interval()
			for site < ts.NumSites() && ts.Site(site).Position < right {
				for i := range genotypes {
					genotypes[i] = 0
				}
				alleles := []string{ts.Site(site).AncestralState}
				for mutation < ts.NumMutations() && ts.Mutation(mutation).Site == site {
					m := ts.Mutation(mutation)
					idx := alleleIndex(&alleles, m.DerivedState)
					for _, s := range tree.Samples(m.Node) {
						genotypes[slot[s]] = idx
					}
					mutation++
				}
				writeVCFRow(bw, contig, positions[site], alleles, genotypes, ploidy)
				site++
			}
		}
		return bw.Flush()
	}
}

// ToVCF writes ts as VCF with default options.
func ToVCF(ts *trees.TreeSequence, w io.Writer) error {
	return VCFEncoder(VCFOptions{})(ts, w)
}

func alleleIndex(alleles *[]string, state string) int {
	for i, a := range *alleles {
		if a == state {
			return i
		}
	}
	*alleles = append(*alleles, state)
	return len(*alleles) - 1
}

func writeVCFRow(bw *bufio.Writer, contig string, pos int64, alleles []string, genotypes []int, ploidy int) {
	alt := "."
	if len(alleles) > 1 {
		alt = strings.Join(alleles[1:], ",")
	}
	fmt.Fprintf(bw, "%s\t%d\t.\t%s\t%s\t.\tPASS\t.\tGT", contig, pos, alleles[0], alt)
	var gt strings.Builder
	for i := 0; i < len(genotypes); i += ploidy {
		gt.Reset()
		for j := 0; j < ploidy; j++ {
			if j > 0 {
				gt.WriteByte('|')
			}
			gt.WriteString(strconv.Itoa(genotypes[i+j]))
		}
		bw.WriteByte('\t')
		bw.WriteString(gt.String())
	}
	bw.WriteByte('\n')
}
