package pipeline

import (
	parquetbuffer "github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"

	loadplan "github.com/goncalonina/Road-to-Power"
)

type dailyParquetRow struct {
	Date    string  `parquet:"name=date, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Load    float64 `parquet:"name=load, type=DOUBLE"`
	Fitness float64 `parquet:"name=fitness, type=DOUBLE"`
	Fatigue float64 `parquet:"name=fatigue, type=DOUBLE"`
	Form    float64 `parquet:"name=form, type=DOUBLE"`
}

// MarshalDailyParquet encodes the daily series of r in memory.
func MarshalDailyParquet(r loadplan.Result) ([]byte, error) {
	fw := parquetbuffer.NewBufferFile()
	if err := writeDailyRows(fw, buildDailyRows(r)); err != nil {
		return nil, err
	}
	if err := fw.Close(); err != nil {
		return nil, err
	}
	return append([]byte(nil), fw.Bytes()...), nil
}

func writeDailyParquet(path string, rows []dailyRow) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return err
	}
	if err := writeDailyRows(fw, rows); err != nil {
		_ = fw.Close()
		return err
	}
	return fw.Close()
}

func writeDailyRows(fw source.ParquetFile, rows []dailyRow) error {
	pw, err := writer.NewParquetWriter(fw, new(dailyParquetRow), 4)
	if err != nil {
		return err
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY
	for _, d := range rows {
		row := dailyParquetRow{
			Date:    d.Date,
			Load:    d.Load,
			Fitness: d.Fitness,
			Fatigue: d.Fatigue,
			Form:    d.Form,
		}
		if err := pw.Write(row); err != nil {
			_ = pw.WriteStop()
			return err
		}
	}
	return pw.WriteStop()
}
